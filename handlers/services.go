package handlers

import (
	"fundimatch/services/matching"
)

// The handler layer reads the active engine through an accessor rather than
// holding it directly: rebuilds swap the engine atomically in main, and each
// request takes its own snapshot.
var (
	engineFn func() *matching.Engine
	reloadFn func() error
)

// SetEngineProvider wires the accessor for the current engine.
func SetEngineProvider(fn func() *matching.Engine) {
	engineFn = fn
}

// SetReloader wires the rebuild-and-swap function used by the admin reload
// endpoint.
func SetReloader(fn func() error) {
	reloadFn = fn
}
