// Package config loads the CLI's default resource-guard settings from an
// evalbox.yaml file, applied before flags so flags always win.
package config

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Defaults holds the resource-guard knobs a host operator can pin in a
// config file instead of repeating on every invocation.
type Defaults struct {
	TimeoutMs              int  `yaml:"timeoutMs"`
	MaxCallDepth           int  `yaml:"maxCallDepth"`
	DisableWhileStatements bool `yaml:"disableWhileStatements"`
}

// Load reads and parses path. A missing file is not an error; it yields
// the zero Defaults so callers fall back entirely to flags.
func Load(path string) (Defaults, error) {
	var d Defaults
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return d, err
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, err
	}
	return d, nil
}
