package database

import (
	"context"
	"time"
)

// Pinger is a backing service that can report whether it is reachable.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckAll pings every dependency with a shared timeout and returns the
// failures keyed by name. An empty map means everything is reachable.
func CheckAll(ctx context.Context, timeout time.Duration, deps ...Pinger) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	failed := make(map[string]string)
	for _, d := range deps {
		if d == nil {
			continue
		}
		if err := d.Ping(ctx); err != nil {
			failed[d.Name()] = err.Error()
		}
	}
	return failed
}
