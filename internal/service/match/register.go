package match

import (
	"google.golang.org/grpc"

	"github.com/Saifkhan77806/LoveTown/internal/app"
	"github.com/Saifkhan77806/LoveTown/internal/rpc"
)

// Registrar ties the Match service into the gRPC server
type Registrar struct {
	appCtx     *app.AppContext
	matchmaker *Matchmaker
}

// NewRegistrar creates a new Registrar for the Match service
func NewRegistrar(appCtx *app.AppContext, mm *Matchmaker) *Registrar {
	return &Registrar{appCtx: appCtx, matchmaker: mm}
}

// Register attaches the Match service implementation to the gRPC server
func (r *Registrar) Register(s *grpc.Server) {
	rpc.RegisterMatchServiceServer(s, NewMatchService(r.appCtx, r.matchmaker))
}
