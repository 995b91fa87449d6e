package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", c.ReportFormat)
	assert.Equal(t, "comma", c.NumberFormat)
	assert.Equal(t, "utf-8", c.Encoding)
	assert.Empty(t, c.Delimiter)
	assert.True(t, c.HistoryEnabled)
	assert.Equal(t, filepath.Join(home, ".outliers", "history.db"), c.HistoryDB)
	assert.Equal(t, 1, c.Jobs)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("number_format: auto\njobs: 2\nreport_format: csv\n"), 0o644))
	t.Setenv("OUTLIERS_JOBS", "4")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "auto", c.NumberFormat)
	assert.Equal(t, "csv", c.ReportFormat)
	assert.Equal(t, 4, c.Jobs)
}

func TestSave_ThenLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	c.HistoryEnabled = false
	c.Delimiter = ";"
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".outliers", "config.yaml"))
	require.NoError(t, err)

	again, err := Load("")
	require.NoError(t, err)
	assert.False(t, again.HistoryEnabled)
	assert.Equal(t, ";", again.Delimiter)
}
