package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Setenv("MKZFILE_DEBUG", "")
	t.Setenv("MKZFILE_INCLUDE", "")
	t.Setenv("MKZFILE_PREFIX", "")
	t.Setenv("MKZFILE_HEADER_GLOB", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "//", cfg.Marker)
	assert.Equal(t, "PP", cfg.Prefix)
	assert.Equal(t, "*.h", cfg.HeaderGlob)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("MKZFILE_INCLUDE", "")
	t.Setenv("MKZFILE_PREFIX", "")

	dir := t.TempDir()
	path := filepath.Join(dir, "mkzfile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
include:
  - include
  - /opt/nacl_sdk/pepper_34/include/ppapi/c
templates: [consts.got, funcs.got]
output: zconsts.go
marker: ""
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "include"), "/opt/nacl_sdk/pepper_34/include/ppapi/c"}, cfg.Include)
	assert.Equal(t, []string{filepath.Join(dir, "consts.got"), filepath.Join(dir, "funcs.got")}, cfg.Templates)
	assert.Equal(t, filepath.Join(dir, "zconsts.go"), cfg.Output)
	assert.Equal(t, "", cfg.Marker)
	assert.Equal(t, "PP", cfg.Prefix)
}

func TestLoadEmptyFile(t *testing.T) {
	t.Setenv("MKZFILE_PREFIX", "")

	path := filepath.Join(t.TempDir(), "mkzfile.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "//", cfg.Marker)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("includes: [a]\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "includes")
}

func TestEnv(t *testing.T) {
	cases := map[string]bool{
		"1":     true,
		"true":  true,
		"false": false,
		"0":     false,
		"yes":   true,
		"'1'":   true,
	}

	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("MKZFILE_DEBUG", value)

			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, want, cfg.Debug)
		})
	}

	t.Setenv("MKZFILE_INCLUDE", "a"+string(filepath.ListSeparator)+"b")
	t.Setenv("MKZFILE_PREFIX", "GL_")
	t.Setenv("MKZFILE_HEADER_GLOB", "gl*.h")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.Include)
	assert.Equal(t, "GL_", cfg.Prefix)
	assert.Equal(t, "gl*.h", cfg.HeaderGlob)
}
