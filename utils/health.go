package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor performs periodic health checks and updates in-memory state.
// A down signal store degrades matching to defaults, so it is reported rather
// than treated as a liveness failure.
func StartHealthMonitor(signalClient *redis.Client) {
	check := func() {
		err := signalClient.Ping(context.Background()).Err()

		healthMu.Lock()
		currentHealth = HealthStatus{
			Redis:     err == nil,
			CheckedAt: time.Now(),
		}
		healthMu.Unlock()
	}

	// One synchronous check so /health reflects reality before the first tick.
	check()

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			check()
		}
	}()
}
