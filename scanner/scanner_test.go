package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardanlabs/mkzfile/parser"
)

func TestScan(t *testing.T) {
	input := `
#define PPAPI_C_PP_ERRORS_H_
enum {
  PP_OK = 0,
  PP_ERROR_FAILED   =   -2 ,
  PP_INPUTEVENT_MODIFIER_ALTKEY = 1 << 2,
  PP_LAST = PP_ERROR_FAILED
  NOT_PP_VALUE = 3,
  PP_NOVALUE,
};
`

	s, err := New(DefaultPrefix)
	require.NoError(t, err)
	require.NoError(t, s.Scan(strings.NewReader(input)))

	want := []parser.ScannedConstant{
		{Name: "PP_OK", Value: "0"},
		{Name: "PP_ERROR_FAILED", Value: "-2 "},
		{Name: "PP_INPUTEVENT_MODIFIER_ALTKEY", Value: "1 << 2"},
		{Name: "PP_LAST", Value: "PP_ERROR_FAILED"},
		{Name: "PP_VALUE", Value: "3"},
	}
	if diff := cmp.Diff(want, s.Constants()); diff != "" {
		t.Errorf("Scan mismatch (-want +got):\n%s", diff)
	}
}

func TestScanDuplicate(t *testing.T) {
	s, err := New(DefaultPrefix)
	require.NoError(t, err)

	require.NoError(t, s.Scan(strings.NewReader("PP_A = 1,\nPP_B = 2,\n")))
	require.NoError(t, s.Scan(strings.NewReader("PP_A = 3,\n")))

	assert.Equal(t, []parser.ScannedConstant{{Name: "PP_A", Value: "3"}, {Name: "PP_B", Value: "2"}}, s.Constants())
}

func TestScanPrefix(t *testing.T) {
	s, err := New("GL_")
	require.NoError(t, err)
	require.NoError(t, s.Scan(strings.NewReader("GL_TEXTURE_2D = 0x0DE1,\nPP_OK = 0,\n")))

	assert.Equal(t, []parser.ScannedConstant{{Name: "GL_TEXTURE_2D", Value: "0x0DE1"}}, s.Constants())
}

func TestScanBOM(t *testing.T) {
	s, err := New(DefaultPrefix)
	require.NoError(t, err)
	require.NoError(t, s.Scan(strings.NewReader("\ufeffPP_OK = 0,\r\n")))

	assert.Equal(t, []parser.ScannedConstant{{Name: "PP_OK", Value: "0"}}, s.Constants())
}

func TestDiscover(t *testing.T) {
	paths, err := Discover([]string{filepath.Join("..", "testdata", "include")}, DefaultGlob)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join("..", "testdata", "include", "pp_errors.h"),
		filepath.Join("..", "testdata", "include", "pp_input_event.h"),
	}, paths)
}

func TestDiscoverPattern(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ppb_core.h", "ppp_instance.h", "pp_var.h", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "ppb_dir.h"), 0o755))

	paths, err := Discover([]string{dir}, "pp{b,p}_*.h")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "ppb_core.h"), filepath.Join(dir, "ppp_instance.h")}, paths)

	_, err = Discover([]string{dir}, "[")
	assert.Error(t, err)

	_, err = Discover([]string{filepath.Join(dir, "missing")}, DefaultGlob)
	assert.Error(t, err)
}

func TestScanFiles(t *testing.T) {
	paths, err := Discover([]string{filepath.Join("..", "testdata", "include")}, DefaultGlob)
	require.NoError(t, err)

	s, err := New(DefaultPrefix)
	require.NoError(t, err)
	require.NoError(t, s.ScanFiles(paths...))

	consts := s.Constants()
	require.Len(t, consts, 15)
	assert.Equal(t, parser.ScannedConstant{Name: "PP_OK", Value: "0"}, consts[0])
	assert.Equal(t, parser.ScannedConstant{Name: "PP_INPUTEVENT_MODIFIER_ALTKEY", Value: "1 << 2"}, consts[14])

	assert.Error(t, s.ScanFiles(filepath.Join("..", "testdata", "include", "missing.h")))
}
