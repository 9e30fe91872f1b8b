/*
config.go - Server configuration

PURPOSE:
Loads server settings from an optional YAML file with environment
variable fallbacks. Precedence: YAML file (when provided) over
environment variables over built-in defaults.

SEE ALSO:
- cmd/server/main.go (consumer)
*/
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sankore/school-portal/fees"
)

// Config holds everything the server needs at startup.
type Config struct {
	Addr        string `yaml:"addr"`
	DBPath      string `yaml:"db_path"`
	SchoolName  string `yaml:"school_name"`
	CurrentYear string `yaml:"current_year"`
	CurrentTerm string `yaml:"current_term"`
}

// Load builds a Config from defaults, environment variables, and an
// optional YAML file at path (pass "" to skip the file).
func Load(path string) (Config, error) {
	cfg := Config{
		Addr:        getenvDefault("PORTAL_ADDR", ":8080"),
		DBPath:      getenvDefault("PORTAL_DB", "portal.db"),
		SchoolName:  getenvDefault("PORTAL_SCHOOL_NAME", "School Portal"),
		CurrentYear: getenvDefault("PORTAL_CURRENT_YEAR", "2025/2026"),
		CurrentTerm: getenvDefault("PORTAL_CURRENT_TERM", string(fees.TermFirst)),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("config: db_path required")
	}
	if !fees.Term(c.CurrentTerm).Valid() {
		return fmt.Errorf("config: unknown term %q", c.CurrentTerm)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
