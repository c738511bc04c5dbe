package honeypot

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"honeypot-lab/pkg/logger"
)

type flakyDep struct {
	down atomic.Bool
}

func (d *flakyDep) Ping(context.Context) error {
	if d.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func serving(t *testing.T, s grpc_health_v1.HealthServer) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN
	}
	return resp.Status
}

func TestRegisterHealthServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dep := &flakyDep{}
	hs := RegisterHealthServer(ctx, grpc.NewServer(), map[string]Pinger{"redis": dep}, 10*time.Millisecond, logger.NewNop())
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, serving(t, hs))

	dep.down.Store(true)
	assert.Eventually(t, func() bool {
		return serving(t, hs) == grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}, time.Second, 5*time.Millisecond)

	dep.down.Store(false)
	assert.Eventually(t, func() bool {
		return serving(t, hs) == grpc_health_v1.HealthCheckResponse_SERVING
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool {
		return serving(t, hs) == grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}, time.Second, 5*time.Millisecond)
}
