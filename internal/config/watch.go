package config

import (
	"context"
	"os"
	"time"
)

// Watch polls path and calls onUpdate with the reloaded config whenever the
// file's modification time advances. Files that fail to load are skipped
// and onError, when set, is told why.
func Watch(ctx context.Context, path string, interval time.Duration, onUpdate func(*Config), onError func(error)) error {
	if path == "" {
		path = DefaultPath
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	lastMod := info.ModTime()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				info, err := os.Stat(path)
				if err != nil {
					continue // transient errors
				}
				if !info.ModTime().After(lastMod) {
					continue
				}
				lastMod = info.ModTime()
				cfg, err := Load(path)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				if onUpdate != nil {
					onUpdate(cfg)
				}
			}
		}
	}()

	return nil
}
