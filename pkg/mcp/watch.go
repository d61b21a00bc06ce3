package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"k8s.io/klog/v2"
)

// reloadDebounce coalesces the burst of events editors produce for a single save.
const reloadDebounce = 250 * time.Millisecond

// WatchConfig reloads the configuration whenever the main configuration file or a
// drop-in file changes. It blocks until ctx is done.
func (s *Server) WatchConfig(ctx context.Context) error {
	configuration := s.Configuration()
	if configuration.ConfigPath == "" && configuration.ConfigDir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create configuration watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	configPath := ""
	if configuration.ConfigPath != "" {
		configPath = filepath.Clean(configuration.ConfigPath)
		// The parent directory is watched so atomic replacements (rename over) are seen
		if err = watcher.Add(filepath.Dir(configPath)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", configPath, err)
		}
	}
	configDir := ""
	if configuration.ConfigDir != "" {
		configDir = filepath.Clean(configuration.ConfigDir)
		if err = watcher.Add(configDir); err != nil {
			klog.V(1).Infof("Not watching drop-in directory %s: %v", configDir, err)
			configDir = ""
		}
	}
	relevant := func(name string) bool {
		name = filepath.Clean(name)
		if name == configPath {
			return true
		}
		return configDir != "" && filepath.Dir(name) == configDir && strings.HasSuffix(name, ".toml")
	}

	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod || !relevant(event.Name) {
				continue
			}
			klog.V(2).Infof("Configuration change detected: %s", event)
			timer.Reset(reloadDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("Configuration watcher error: %v", err)
		case <-timer.C:
			if err := s.reloadConfiguration(); err != nil {
				klog.Errorf("%v", err)
			}
		}
	}
}
