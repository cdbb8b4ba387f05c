package server

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// StartCleanup purges outputs older than ttl on the cron schedule spec.
func StartCleanup(dir string, ttl time.Duration, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		n, err := PurgeOutputs(dir, ttl, time.Now())
		if err != nil {
			slog.Error("Output cleanup failed", slog.String("error", err.Error()))
			return
		}
		if n > 0 {
			slog.Info("Purged outputs", slog.Int("count", n), slog.String("dir", dir))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// PurgeOutputs removes .png files in dir last modified before now-ttl.
func PurgeOutputs(dir string, ttl time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := now.Add(-ttl)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
