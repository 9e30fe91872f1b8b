package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "portal.db", cfg.DBPath)
	assert.Equal(t, "2025/2026", cfg.CurrentYear)
	assert.Equal(t, "1st Term", cfg.CurrentTerm)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PORTAL_ADDR", ":9090")
	t.Setenv("PORTAL_CURRENT_TERM", "2nd Term")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "2nd Term", cfg.CurrentTerm)
}

func TestLoad_FileOverridesEnv(t *testing.T) {
	t.Setenv("PORTAL_ADDR", ":9090")

	path := filepath.Join(t.TempDir(), "portal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7070\"\nschool_name: Sankore Academy\n"), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "Sankore Academy", cfg.SchoolName)
	// Untouched keys keep their fallback values.
	assert.Equal(t, "portal.db", cfg.DBPath)
}

func TestLoad_RejectsUnknownTerm(t *testing.T) {
	t.Setenv("PORTAL_CURRENT_TERM", "Summer Term")

	_, err := Load("")

	assert.ErrorContains(t, err, "unknown term")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Error(t, err)
}
