package health

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/go-faster/errors"
)

// PingCheck adapts anything with a context-aware Ping method (database pools,
// cache clients) into a readiness CheckFunc.
func PingCheck(p interface{ Ping(context.Context) error }) CheckFunc {
	return p.Ping
}

// GoroutineCountCheck fails once the process holds more goroutines than
// limit. A steadily climbing count under constant load usually means a leak.
func GoroutineCountCheck(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, limit)
		}
		return nil
	}
}

// GCMaxPauseCheck fails when any recorded stop-the-world pause exceeds limit,
// which points at memory pressure or an oversized heap.
func GCMaxPauseCheck(limit time.Duration) CheckFunc {
	return func(context.Context) error {
		var stats debug.GCStats
		debug.ReadGCStats(&stats)
		for _, pause := range stats.Pause {
			if pause > limit {
				return errors.Errorf("GC pause %s exceeds threshold %s", pause, limit)
			}
		}
		return nil
	}
}
