package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*flag.FlagSet, *runFlags) {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	rf := addRunFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs, rf
}

func TestConfigDefaults(t *testing.T) {
	fs, rf := parse(t)
	cfg, err := rf.config(fs)
	require.NoError(t, err)

	assert.Equal(t, "Homo_sapiens_COI", cfg.Reference)
	assert.Equal(t, "species", cfg.Column)
	assert.Equal(t, defaultReferencesFile, cfg.ReferencesFile)
	assert.Nil(t, cfg.Selection)
}

func TestConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("column: genus\nreference: other\nworkers: 2\n"), 0o644))

	fs, rf := parse(t, "-config", path, "-column", "Locality", "-select", "a, b,,c", "-insertions")
	cfg, err := rf.config(fs)
	require.NoError(t, err)

	assert.Equal(t, "locality", cfg.Column)
	assert.Equal(t, "other", cfg.Reference)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Selection)
	assert.True(t, cfg.Insertions)
	assert.False(t, cfg.Aligned)
}

func TestConfigSingleSelection(t *testing.T) {
	fs, rf := parse(t, "-select", "only")
	_, err := rf.config(fs)
	require.Error(t, err)
}

func TestSpecimensRequiresInput(t *testing.T) {
	_, rf := parse(t)
	_, err := rf.specimens("species")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "s.fasta")
	require.NoError(t, os.WriteFile(path, []byte(">s1 a\nACGT\n"), 0o644))
	_, rf = parse(t, "-fasta", path)
	specimens, err := rf.specimens("species")
	require.NoError(t, err)
	assert.Len(t, specimens, 1)
}
