package server

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/Saifkhan77806/LoveTown/internal/config"
)

// NewGRPCServer builds a gRPC server with all provided services registered.
func NewGRPCServer(opts []grpc.ServerOption, registrars ...Registrar) *grpc.Server {
	grpcServer := grpc.NewServer(opts...)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)
	return grpcServer
}

// ListenGRPC opens the configured gRPC address.
func ListenGRPC(cfg *config.Config) (net.Listener, error) {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return lis, nil
}
