package race

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/orbitype/internal/model"
)

const rosterSchemaURL = "roster.schema.json"

//go:embed roster.schema.json
var rosterSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func rosterSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(rosterSchemaURL, bytes.NewReader(rosterSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("failed to add roster schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(rosterSchemaURL)
	})
	return schema, schemaErr
}

type rosterFile struct {
	Bots []model.RaceBot `json:"bots"`
}

// ParseRoster decodes and validates a YAML bot roster.
func ParseRoster(data []byte) ([]model.RaceBot, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	// Round-trip through JSON so the validator sees JSON-native types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode roster: %w", err)
	}
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return nil, fmt.Errorf("failed to decode roster: %w", err)
	}
	sch, err := rosterSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(instance); err != nil {
		return nil, fmt.Errorf("invalid roster: %w", err)
	}
	var file rosterFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to decode roster: %w", err)
	}
	seen := make(map[string]struct{}, len(file.Bots))
	for _, bot := range file.Bots {
		if _, ok := seen[bot.ID]; ok {
			return nil, fmt.Errorf("invalid roster: duplicate bot id %q", bot.ID)
		}
		seen[bot.ID] = struct{}{}
	}
	return file.Bots, nil
}

// LoadRoster reads a roster file.
func LoadRoster(path string) ([]model.RaceBot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	return ParseRoster(data)
}

// Roster holds the current bot list and falls back to DefaultBots whenever
// the file is missing or invalid.
type Roster struct {
	path   string
	logger *zap.Logger

	mu   sync.RWMutex
	bots []model.RaceBot
}

// NewRoster loads path. An empty path uses the built-in bots.
func NewRoster(path string, logger *zap.Logger) *Roster {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Roster{path: path, logger: logger}
	r.Reload()
	return r
}

// Bots returns a copy of the current roster.
func (r *Roster) Bots() []model.RaceBot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return clone(r.bots)
}

// Reload re-reads the roster file. It reports whether the file was used.
func (r *Roster) Reload() bool {
	bots := DefaultBots()
	used := false
	if r.path != "" {
		loaded, err := LoadRoster(r.path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			r.logger.Info("roster file not found, using default bots", zap.String("path", r.path))
		case err != nil:
			r.logger.Warn("roster rejected, using default bots", zap.String("path", r.path), zap.Error(err))
		default:
			bots = loaded
			used = true
		}
	}
	r.mu.Lock()
	r.bots = bots
	r.mu.Unlock()
	return used
}

// Watch reloads the roster whenever its file changes, until ctx is done.
func (r *Roster) Watch(ctx context.Context) error {
	if r.path == "" {
		<-ctx.Done()
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create roster watcher: %w", err)
	}
	defer func() {
		if cerr := watcher.Close(); cerr != nil {
			_ = cerr
		}
	}()
	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(r.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			used := r.Reload()
			r.logger.Debug("roster reloaded", zap.String("op", event.Op.String()), zap.Bool("from_file", used))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("roster watcher error", zap.Error(err))
		}
	}
}
