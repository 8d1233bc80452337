// Package config loads the site configuration: an optional config.yml (or
// config.yaml) in the input root whose top-level scalar keys become the
// globals available to {% global %} tags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	serrors "git.home.luguber.info/inful/tagsite/internal/errors"
	"git.home.luguber.info/inful/tagsite/internal/logfields"
	"git.home.luguber.info/inful/tagsite/internal/scope"
)

// FileNames are the accepted config file names, in lookup order.
var FileNames = []string{"config.yml", "config.yaml"}

// EnvFileName is loaded from the input root before the config is expanded.
const EnvFileName = ".env"

// Site is the decoded site configuration.
type Site struct {
	// Path is the file the values came from; empty when no config exists.
	Path   string
	Values map[string]string
}

// Globals converts the config into the read-only globals map.
func (s *Site) Globals() scope.Globals {
	return scope.NewGlobals(s.Values)
}

// Find returns the config file path inside root, or "" when there is none.
func Find(root string) (string, error) {
	for _, name := range FileNames {
		p := filepath.Join(root, name)
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", serrors.IOError("stat", p, err)
		}
		if info.IsDir() {
			return "", serrors.ConfigError(p, fmt.Errorf("%s is a directory", name))
		}
		return p, nil
	}
	return "", nil
}

// Load reads the site config from root. A missing config is not an error and
// yields an empty set of globals.
func Load(root string) (*Site, error) {
	env, err := readEnvFile(root)
	if err != nil {
		return nil, err
	}

	path, err := Find(root)
	if err != nil {
		return nil, err
	}
	if path == "" {
		slog.Debug("No site config found", logfields.Path(root))
		return &Site{Values: map[string]string{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, serrors.IOError("read config", path, err)
	}

	values, err := Parse(data, env)
	if err != nil {
		return nil, serrors.ConfigError(path, err)
	}
	slog.Debug("Loaded site config", logfields.Path(path), logfields.Count(len(values)))
	return &Site{Path: path, Values: values}, nil
}

// Parse expands environment variables in data and decodes it as a YAML
// mapping of scalar values. Nested mappings and sequences are rejected.
// Variables come from the process environment first, then from env.
func Parse(data []byte, env map[string]string) (map[string]string, error) {
	expanded := os.Expand(string(data), func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return env[name]
	})

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	values := make(map[string]string, len(raw))
	for key, node := range raw {
		if node.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("key %q: only scalar values are supported (line %d)", key, node.Line)
		}
		if node.Tag == "!!null" {
			values[key] = ""
			continue
		}
		values[key] = node.Value
	}
	return values, nil
}

// readEnvFile returns the variables of root/.env. The process environment
// is left untouched so an edited file is picked up by the next Load.
func readEnvFile(root string) (map[string]string, error) {
	path := filepath.Join(root, EnvFileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, serrors.ConfigError(path, err)
	}
	slog.Debug("Read environment file", logfields.Path(path), logfields.Count(len(env)))
	return env, nil
}
