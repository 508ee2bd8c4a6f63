package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/oggyb/nameless/internal/config"
)

// NewGRPCServer builds a server with every registrar attached.
func NewGRPCServer(log *slog.Logger, registrars ...Registrar) *grpc.Server {
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(ErrorInterceptor(log)))

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)
	return grpcServer
}

// StartGRPCServer serves on cfg.GRPC until ctx is done, then stops gracefully.
func StartGRPCServer(ctx context.Context, cfg *config.Config, log *slog.Logger, registrars ...Registrar) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ServeGRPC(ctx, lis, log, registrars...)
}

// ServeGRPC serves on lis until ctx is done.
func ServeGRPC(ctx context.Context, lis net.Listener, log *slog.Logger, registrars ...Registrar) error {
	grpcServer := NewGRPCServer(log, registrars...)

	go func() {
		<-ctx.Done()
		log.Info("stopping gRPC server")
		grpcServer.GracefulStop()
	}()

	log.Info("starting gRPC server", "addr", lis.Addr().String())
	return grpcServer.Serve(lis)
}
