package cli

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/repoadd/repoadd/internal/models"
)

// fileConfig is the optional YAML configuration file. Values from it
// are defaults; command-line flags win.
type fileConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	KeyURL   string `yaml:"key_url"`
	SigLevel string `yaml:"sig_level"`
	ConfPath string `yaml:"conf_path"`
	Anchor   string `yaml:"anchor"`
}

// loadConfigFile parses the YAML file at path. Unknown keys are
// rejected so typos surface instead of being silently ignored.
func loadConfigFile(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.RegistrarError{
			Type: models.ErrInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	defer f.Close()

	var cfg fileConfig
	d := yaml.NewDecoder(f, yaml.DisallowUnknownField())
	if err := d.Decode(&cfg); err != nil {
		return nil, &models.RegistrarError{
			Type: models.ErrInvalidConfig,
			Path: path,
			Err:  fmt.Errorf("error loading config: %w", err),
		}
	}
	return &cfg, nil
}
