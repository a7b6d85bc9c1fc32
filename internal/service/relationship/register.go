package relationship

import (
	"google.golang.org/grpc"

	"github.com/Saifkhan77806/LoveTown/internal/app"
	"github.com/Saifkhan77806/LoveTown/internal/rpc"
)

// Registrar ties the Relationship service into the gRPC server
type Registrar struct {
	appCtx  *app.AppContext
	machine *Machine
}

// NewRegistrar creates a new Registrar for the Relationship service
func NewRegistrar(appCtx *app.AppContext, machine *Machine) *Registrar {
	return &Registrar{appCtx: appCtx, machine: machine}
}

// Register attaches the Relationship service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	rpc.RegisterRelationshipServiceServer(s, NewRelationshipService(r.appCtx, r.machine))
}
