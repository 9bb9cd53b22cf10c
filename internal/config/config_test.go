package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/dnadiagnoser-go/internal/alignment"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dnadiagnoser.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Homo_sapiens_COI", cfg.Reference)
	assert.Equal(t, "species", cfg.Column)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, alignment.DefaultDNA(), cfg.Scoring)
	assert.False(t, cfg.Insertions)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
reference: Mus_musculus_COI
references_file: refs.tab
column: genus
selection: [Mus, Rattus]
insertions: true
relative_positions: true
workers: 3
scoring:
  match: 2
  mismatch: -3
  gap_open: -5
  gap_extend: -2
  end_gap_open: 0
  end_gap_extend: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Mus_musculus_COI", cfg.Reference)
	assert.Equal(t, "refs.tab", cfg.ReferencesFile)
	assert.Equal(t, "genus", cfg.Column)
	assert.Equal(t, []string{"Mus", "Rattus"}, cfg.Selection)
	assert.Equal(t, 3, cfg.Workers)
	want, err := alignment.NewScoringMatrix(2, -3, -5, -2, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, want, cfg.Scoring)

	opts := cfg.Options()
	assert.True(t, opts.Insertions)
	assert.True(t, opts.RelativePositions)
	assert.False(t, opts.Aligned)
	assert.Equal(t, 3, opts.Workers)
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "aligned: true\n"))
	require.NoError(t, err)

	assert.True(t, cfg.Aligned)
	assert.Equal(t, "Homo_sapiens_COI", cfg.Reference)
	assert.Equal(t, "species", cfg.Column)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", "reference: [unclosed\n"},
		{"single selection", "selection: [Mus]\n"},
		{"negative workers", "workers: -1\n"},
		{"bad scoring", "scoring:\n  match: 0\n"},
		{"empty reference", "reference: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSingleSelection(t *testing.T) {
	cfg := Default()
	cfg.Selection = []string{"only"}
	assert.ErrorIs(t, cfg.Validate(), ErrSingleSelection)
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Selection = []string{"a", "b"}
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.Write(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
