package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// GoroutineCount fails once the process exceeds limit goroutines, which in
// this service almost always means leaked dispatch or sweep loops.
func GoroutineCount(limit int) ProbeFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("%d goroutines, limit %d", n, limit)
		}
		return nil
	}
}

// GCPause fails when the most recent stop-the-world pause exceeds limit.
// Only the latest pause counts, so one historic spike does not keep the
// probe failing.
func GCPause(limit time.Duration) ProbeFunc {
	return func(context.Context) error {
		var stats debug.GCStats
		debug.ReadGCStats(&stats)
		if len(stats.Pause) > 0 && stats.Pause[0] > limit {
			return errors.Errorf("GC pause %s, limit %s", stats.Pause[0], limit)
		}
		return nil
	}
}
