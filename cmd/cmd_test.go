package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("MKZFILE_INCLUDE", "")
	t.Setenv("MKZFILE_PREFIX", "")
	t.Setenv("MKZFILE_HEADER_GLOB", "")
	t.Setenv("MKZFILE_DEBUG", "")

	var stdout, stderr bytes.Buffer
	cmd := NewCLI()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), err
}

func TestGenerateStdout(t *testing.T) {
	out, err := run(t, "-I", "../testdata/include", "../testdata/consts.got")
	require.NoError(t, err)

	assert.Contains(t, out, "// MACHINE GENERATED BY THE COMMAND ABOVE; DO NOT EDIT\n\npackage ppapi\n")
	assert.Contains(t, out, "\n//enum Error PP_OK|PP_ERROR_\n")
	assert.Contains(t, out, "\tPP_OK Error = 0\n")
	assert.Contains(t, out, "\tPP_OK_COMPLETIONPENDING Error = -1\n")
	assert.Contains(t, out, "\tPP_ERROR_NOACCESS Error = -7\n")
	assert.Contains(t, out, "\tPP_INPUTEVENT_TYPE_MOUSEMOVE InputEventType = 2\n")
	assert.NotContains(t, out, "PP_INPUTEVENT_MODIFIER_SHIFTKEY")

	assert.Contains(t, out, "// ppbCoreAddRefResource calls PPB_Core[0] with a 4 byte frame and no result.\n")
	assert.Contains(t, out, "// ppbVarVarFromUtf8 calls PPB_Var[3] with a 12 byte frame and no result.\n")
	assert.Contains(t, out, "// ppbCoreGetTime calls PPB_Core[3] with a 0 byte frame.\n")
	assert.Contains(t, out, "// ppcInstanceDidDestroy is a callback.\n")
	assert.Contains(t, out, "// ppcMessagingHandleMessage is a callback taking a pointer.\n")
}

func TestGenerateOutputAndCheck(t *testing.T) {
	output := filepath.Join(t.TempDir(), "zconsts.go")

	out, err := run(t, "-I", "../testdata/include", "-o", output, "../testdata/consts.got")
	require.NoError(t, err)
	assert.Empty(t, out)

	bts, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(bts), "\tPP_ERROR_FAILED Error = -2\n")

	_, err = run(t, "-I", "../testdata/include", "-o", output, "--check", "../testdata/consts.got")
	require.NoError(t, err)

	// Only the command line differs.
	stale := append([]byte("// mkzfile elsewhere\n"), bts[bytes.IndexByte(bts, '\n')+1:]...)
	require.NoError(t, os.WriteFile(output, stale, 0o644))
	_, err = run(t, "-I", "../testdata/include", "-o", output, "--check", "../testdata/consts.got")
	require.NoError(t, err)

	stale = bytes.Replace(bts, []byte("= -2"), []byte("= -20"), 1)
	require.NoError(t, os.WriteFile(output, stale, 0o644))
	_, err = run(t, "-I", "../testdata/include", "-o", output, "--check", "../testdata/consts.got")
	require.ErrorIs(t, err, errStale)
	assert.Contains(t, err.Error(), "-\tPP_ERROR_FAILED Error = -20\n")
	assert.Contains(t, err.Error(), "+\tPP_ERROR_FAILED Error = -2\n")
}

func TestCheckRequiresOutput(t *testing.T) {
	_, err := run(t, "--check", "../testdata/consts.got")
	assert.EqualError(t, err, "--check requires --output")
}

func TestNoTemplates(t *testing.T) {
	_, err := run(t, "-I", "../testdata/include")
	assert.EqualError(t, err, "no template files")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	abs, err := filepath.Abs("../testdata")
	require.NoError(t, err)

	cfg := "include: [" + filepath.Join(abs, "include") + "]\n" +
		"templates: [" + filepath.Join(abs, "consts.got") + "]\n" +
		"output: zconsts.go\n"
	path := filepath.Join(dir, "mkzfile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))

	_, err = run(t, "--config", path)
	require.NoError(t, err)

	bts, err := os.ReadFile(filepath.Join(dir, "zconsts.go"))
	require.NoError(t, err)
	assert.Contains(t, string(bts), "\tPP_OK Error = 0\n")
}

func TestGenerateErrors(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "bad.got")
	require.NoError(t, os.WriteFile(tmpl, []byte("package ppapi\n\n//func f(x Undefined) = PPB_X[0]\n"), 0o644))

	_, err := run(t, tmpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.got:3:")
	assert.Contains(t, err.Error(), "undefined type")

	_, err = run(t, "-I", filepath.Join(dir, "missing"), "../testdata/consts.got")
	require.ErrorIs(t, err, os.ErrNotExist)
}
