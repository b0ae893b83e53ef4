package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML settings file over the defaults and then applies the
// environment. A missing path yields DefaultFromEnv.
func LoadFile(path string) (Settings, error) {
	s := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	ApplyEnv(&s)
	return s, nil
}

// FileStore serves settings loaded from a YAML file and reloads them when
// the file changes. Readers always get a complete snapshot.
type FileStore struct {
	path     string
	override func(*Settings)

	// OnReload, if set, runs after each successful Reload with the previous
	// and the new snapshot. Set it before calling Watch.
	OnReload func(prev, next Settings)

	mu      sync.RWMutex
	current Settings
}

// NewFileStore loads path once. override, if non-nil, is applied after every
// load (CLI flags use it to keep precedence over the file).
func NewFileStore(path string, override func(*Settings)) (*FileStore, error) {
	fs := &FileStore{path: path, override: override}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Settings returns a copy of the current snapshot.
func (f *FileStore) Settings() Settings {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current.Clone()
}

// Reload re-reads the file. On error the previous snapshot stays in place.
func (f *FileStore) Reload() error {
	s, err := LoadFile(f.path)
	if err != nil {
		return err
	}
	if f.override != nil {
		f.override(&s)
	}
	f.mu.Lock()
	prev := f.current
	f.current = s
	f.mu.Unlock()
	if f.OnReload != nil {
		f.OnReload(prev, s.Clone())
	}
	return nil
}

// Watch reloads the store whenever the file is written, created, or renamed
// into place. It blocks until ctx is done. The parent directory is watched so
// editors that replace the file atomically are handled.
func (f *FileStore) Watch(ctx context.Context) error {
	if f.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(f.path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := f.Reload(); err != nil {
				slog.Warn("config.reload", "path", f.path, "error", err)
				continue
			}
			slog.Info("config.reload", "path", f.path, "op", event.Op.String())
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			slog.Warn("config.watch", "error", err)
		}
	}
}
