package server

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Registrar is a common interface for all gRPC service registrars
type Registrar interface {
	Register(s *grpc.Server)
}

// HealthRegistrar exposes grpc.health.v1 backed by a Probe.
type HealthRegistrar struct {
	Health *health.Server
}

func NewHealthRegistrar() *HealthRegistrar {
	return &HealthRegistrar{Health: health.NewServer()}
}

func (r *HealthRegistrar) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, r.Health)
}

// Set reports the overall serving status.
func (r *HealthRegistrar) Set(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	r.Health.SetServingStatus("", st)
}
