package util

import (
	"log/slog"
	"time"
)

// Trace logs the elapsed time: defer util.Trace("name")()
func Trace(name string) func() {
	start := time.Now()
	return func() {
		slog.Debug("trace", slog.String("name", name), slog.Duration("elapsed", time.Since(start)))
	}
}
