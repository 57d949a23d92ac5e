// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"fundimatch/config"

	"github.com/go-redis/redis/v8"
)

// SignalClient is the Redis client backing the external signal store
// (per-provider availability and locations).
var SignalClient *redis.Client

// InitSignalStore initializes the Redis signal client (using DB from AppConfig).
// Unlike the matching path, startup treats Redis as a soft dependency: the
// gateway degrades to defaults when the store is unreachable, so a failed
// ping is logged rather than fatal.
func InitSignalStore() {
	SignalClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSignalDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := SignalClient.Ping(ctx).Result(); err != nil {
		log.Printf("Redis (signal store) unreachable, matching will use defaults: %v", err)
	}
}

// GetSignalClient returns the signal store client.
func GetSignalClient() *redis.Client {
	if SignalClient == nil {
		InitSignalStore()
	}
	return SignalClient
}
