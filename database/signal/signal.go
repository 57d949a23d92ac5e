// Package signal is the read-only gateway to externally maintained
// per-provider state: live availability and last-known location, keyed by
// provider id in Redis.
package signal

import (
	"context"
	"encoding/json"
	"fmt"

	"fundimatch/models"

	"github.com/go-redis/redis/v8"
)

// Redis hash keys. Fields are provider ids; availability values are "1"/"0",
// location values are JSON {"lat":…,"long":…} objects.
const (
	AvailabilityKey = "artisans:availability"
	LocationsKey    = "artisans:locations"
)

// Gateway looks up external per-provider signals. Implementations must apply
// the documented defaults for absent ids and return an error only when the
// store itself fails; callers recover from that error with their own
// defaults rather than surfacing it.
type Gateway interface {
	// Availability resolves availability per id. Ids absent from the store
	// resolve to the configured default.
	Availability(ctx context.Context, ids []string) (map[string]bool, error)
	// Locations resolves last-known locations per id. Ids absent from the
	// store resolve to the (0,0) sentinel, which callers must treat as
	// "unknown", never as a real location.
	Locations(ctx context.Context, ids []string) (map[string]models.GeoPoint, error)
}

// RedisGateway implements Gateway against the Redis signal store.
type RedisGateway struct {
	Client           *redis.Client
	DefaultAvailable bool
}

// NewRedisGateway returns a gateway over client. defaultAvailable is the
// policy for ids with no availability entry; default-unavailable guarantees
// only confirmed-available providers are shown.
func NewRedisGateway(client *redis.Client, defaultAvailable bool) *RedisGateway {
	return &RedisGateway{Client: client, DefaultAvailable: defaultAvailable}
}

func (g *RedisGateway) Availability(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	values, err := g.Client.HMGet(ctx, AvailabilityKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("signal store availability lookup: %w", err)
	}
	for i, id := range ids {
		raw, ok := values[i].(string)
		if !ok {
			out[id] = g.DefaultAvailable
			continue
		}
		out[id] = raw == "1" || raw == "true"
	}
	return out, nil
}

func (g *RedisGateway) Locations(ctx context.Context, ids []string) (map[string]models.GeoPoint, error) {
	out := make(map[string]models.GeoPoint, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	values, err := g.Client.HMGet(ctx, LocationsKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("signal store location lookup: %w", err)
	}
	for i, id := range ids {
		raw, ok := values[i].(string)
		if !ok {
			out[id] = models.GeoPoint{}
			continue
		}
		var point models.GeoPoint
		if err := json.Unmarshal([]byte(raw), &point); err != nil {
			// Malformed entry degrades to the unknown sentinel for this id only.
			out[id] = models.GeoPoint{}
			continue
		}
		out[id] = point
	}
	return out, nil
}
