package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Connection.Host)
	assert.Equal(t, 5432, cfg.Connection.Port)
	assert.Equal(t, "public", cfg.Connection.Schema)
	assert.Equal(t, 100, cfg.Data.PageSize)
	assert.True(t, cfg.OmniBox.BackspaceRemoves)
	assert.True(t, cfg.OmniBox.SingletonSort)
	assert.Equal(t, 150, cfg.OmniBox.DebounceMS)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "history.db", filepath.Base(cfg.History.Path))
	assert.Equal(t, "views.yaml", filepath.Base(cfg.Views.Path))
	assert.Equal(t, "omnipg.log", filepath.Base(cfg.Log.Path))
}

func TestLoad_FilesEnvAndFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "omnipg.yaml")
	content := `
connection:
  host: db.internal
  table: samples
omnibox:
  max_options: 10
data:
  page_size: 25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("OMNIPG_OMNIBOX_MAX_OPTIONS", "7")

	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config", path, "--page-size", "40", "--filter", "qty > 1", "--filter", "search x"}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Connection.Host)
	assert.Equal(t, "samples", cfg.Connection.Table)
	assert.Equal(t, 7, cfg.OmniBox.MaxOptions, "environment overrides file")
	assert.Equal(t, 40, cfg.Data.PageSize, "flag overrides file")

	filters, err := fs.GetStringArray("filter")
	require.NoError(t, err)
	assert.Equal(t, []string{"qty > 1", "search x"}, filters)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))

	_, err := Load(fs)
	assert.Error(t, err)
}
