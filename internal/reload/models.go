package reload

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/emberforge/assetmon/internal/errors"
	"github.com/emberforge/assetmon/internal/monitor"
)

// Model is a decoded entity model definition.
type Model struct {
	Name       string   `json:"name"`
	Geometry   string   `json:"geometry"`
	Texture    string   `json:"texture"`
	Scale      float64  `json:"scale"`
	Animations []string `json:"animations"`
}

// ModelManager serves decoded model definitions from a size-bounded LRU
// cache and invalidates entries when the monitor reports changes to their
// source files. Evicted or invalidated models are re-read and re-decoded
// transparently on the next lookup.
type ModelManager struct {
	logger *slog.Logger
	dir    string
	key    string
	cache  *lru.Cache[string, *Model]
}

// NewModelManager creates a model manager for dir with an LRU cache bounded
// to size entries.
func NewModelManager(logger *slog.Logger, dir string, size int) (*ModelManager, error) {
	dir = filepath.Clean(dir)
	cache, err := lru.New[string, *Model](size)
	if err != nil {
		return nil, err
	}
	return &ModelManager{
		logger: logger,
		dir:    dir,
		key:    "model-reloader:" + dir,
		cache:  cache,
	}, nil
}

// GetOrCompute returns the named model, decoding it from disk if it is not
// cached.
func (m *ModelManager) GetOrCompute(name string) (*Model, error) {
	if model, ok := m.cache.Get(name); ok {
		return model, nil
	}

	model, err := m.load(name)
	if err != nil {
		return nil, err
	}
	m.cache.Add(name, model)
	return model, nil
}

// Test reports whether the path names a model definition file.
func (m *ModelManager) Test(path string, _ monitor.EventKind) bool {
	return strings.ToLower(filepath.Ext(path)) == ".json"
}

// Accept invalidates the cache entries for every changed model. Pure map
// work, so it runs directly on the scheduler goroutine; the expensive decode
// is deferred to the next GetOrCompute.
func (m *ModelManager) Accept(batch monitor.Batch) {
	for _, ev := range batch {
		name := modelName(ev.Path)
		if m.cache.Remove(name) {
			m.logger.Info("model invalidated", "name", name, "kind", ev.Kind.String())
		}
	}
}

// Key returns the stable registration identity for this manager.
func (m *ModelManager) Key() string { return m.key }

// Cached returns the number of models currently cached.
func (m *ModelManager) Cached() int { return m.cache.Len() }

func (m *ModelManager) load(name string) (*Model, error) {
	path := filepath.Join(m.dir, name+".json")
	data, err := os.ReadFile(path) //#nosec G304 -- Paths come from the watched models directory
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("model %q", name).WithCause(err)
		}
		return nil, errors.Internal("read model " + name).WithCause(err)
	}

	var model Model
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, errors.InvalidArgumentf("decode model %q", name).WithCause(err)
	}
	if model.Name == "" {
		model.Name = name
	}
	if model.Scale == 0 {
		model.Scale = 1
	}

	m.logger.Debug("model decoded", "name", name, "geometry", model.Geometry)
	return &model, nil
}

func modelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
