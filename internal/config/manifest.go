package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Watch rule kinds understood by the daemon. Each kind is wired to a reload
// manager at startup.
const (
	KindScript = "script"
	KindModel  = "model"
	KindLog    = "log"
)

// Manifest declares which directories are watched and which reloader each
// one feeds.
type Manifest struct {
	Watches []WatchRule `yaml:"watches" validate:"required,min=1,dive"`
}

// WatchRule is one watched directory.
type WatchRule struct {
	// Directory is the path to watch. Must exist at startup.
	Directory string `yaml:"directory" validate:"required"`
	// Kind selects the reloader: script, model, or log.
	Kind string `yaml:"kind" validate:"required,oneof=script model log"`
	// Patterns optionally narrows the rule to matching base names
	// (filepath.Match syntax). Empty means the reloader's own filter decides.
	Patterns []string `yaml:"patterns"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadManifest reads and validates the watch manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- Manifest path from user input is expected
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}

	return &m, nil
}
