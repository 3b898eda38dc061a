package engine

import (
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/xela07ax/ics-breach-sim/internal/domain"
)

// HealthServiceName — имя сервиса дашборда в grpc.health.v1.
func HealthServiceName(t domain.Target) string {
	return "ics." + string(t)
}

// HealthObserver транслирует фазу дашборда в gRPC health: Normal -> SERVING, иначе NOT_SERVING.
func HealthObserver(hs *health.Server) Observer {
	return func(state domain.DashboardState) {
		status := healthpb.HealthCheckResponse_SERVING
		if state.Phase != domain.PhaseNormal {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus(HealthServiceName(state.Target), status)
	}
}
