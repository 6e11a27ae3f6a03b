// Package health reports dependency health through the standard gRPC health
// service so orchestrators can probe the API.
package health

import (
	"context"
	"sort"
	"time"

	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/taskboard-server/internal/logger"
)

// ServiceName is the health service name of the task API. The empty name
// reports the same status for the server as a whole.
const ServiceName = "taskboard.v1.TaskAPI"

const defaultPingTimeout = 5 * time.Second

// Pinger is a dependency that can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker periodically pings dependencies and publishes the combined status.
type Checker struct {
	server   *grpchealth.Server
	pingers  map[string]Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger
}

func NewChecker(server *grpchealth.Server, interval time.Duration, logger *logger.Logger) *Checker {
	return &Checker{
		server:   server,
		pingers:  make(map[string]Pinger),
		interval: interval,
		timeout:  pingTimeout(interval),
		logger:   logger,
	}
}

func pingTimeout(interval time.Duration) time.Duration {
	if interval <= 0 {
		return defaultPingTimeout
	}
	return interval / 2
}

// Add registers a dependency under name. Not safe to call after Run.
func (c *Checker) Add(name string, p Pinger) {
	c.pingers[name] = p
}

// Check pings every dependency once and updates the served status.
func (c *Checker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING

	names := make([]string, 0, len(c.pingers))
	for name := range c.pingers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.pingers[name].Ping(pingCtx)
		cancel()
		if err != nil {
			c.logger.Warn("Health: dependency unavailable",
				"dependency", name,
				"error", err.Error())
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks immediately and then every interval until ctx is done. A
// non-positive interval checks only once. On return every service is
// marked NOT_SERVING.
func (c *Checker) Run(ctx context.Context) {
	c.Check(ctx)

	var tick <-chan time.Time
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			c.server.Shutdown()
			return
		case <-tick:
			c.Check(ctx)
		}
	}
}
