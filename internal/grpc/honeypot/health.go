package honeypot

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"honeypot-lab/pkg/logger"
)

// ServiceName is the name reported to gRPC health probes
const ServiceName = "honeypot.v1.Honeypot"

// DefaultCheckInterval is how often dependencies are re-checked
const DefaultCheckInterval = 10 * time.Second

// Pinger is a dependency whose failure marks the service NOT_SERVING
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterHealthServer registers the gRPC health check service and keeps its
// status in sync with deps until ctx is cancelled
func RegisterHealthServer(ctx context.Context, grpcServer *grpc.Server, deps map[string]Pinger, interval time.Duration, log *logger.Logger) *health.Server {
	healthServer := health.NewServer()
	setStatus(healthServer, grpc_health_v1.HealthCheckResponse_SERVING)

	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	log = log.WithComponent("grpc-health")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				setStatus(healthServer, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
				return
			case <-ticker.C:
				setStatus(healthServer, checkDeps(ctx, deps, interval, log))
			}
		}
	}()

	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	return healthServer
}

func checkDeps(ctx context.Context, deps map[string]Pinger, timeout time.Duration, log *logger.Logger) grpc_health_v1.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	for name, dep := range deps {
		if err := dep.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("dependency unhealthy")
			status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
	}
	return status
}

func setStatus(s *health.Server, status grpc_health_v1.HealthCheckResponse_ServingStatus) {
	s.SetServingStatus("", status)
	s.SetServingStatus(ServiceName, status)
}
