package tools_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-builder/tools"
)

func TestFetchCode_WholeFile(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0o644))

	out, err := h.call(t, "fetch_code", tools.FetchCodeInput{FilePath: "main.go"})
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc main() {}\n", out)
}

func TestFetchCode_Paging(t *testing.T) {
	h := newHarness(t)
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, strings.Repeat("x", i+1))
	}
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "f.txt"), []byte(strings.Join(lines, "\n")), 0o644))

	out, err := h.call(t, "fetch_code", tools.FetchCodeInput{FilePath: "f.txt", Offset: 2, Limit: 3})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "xxx\nxxxx\nxxxxx\n"), out)
	assert.Contains(t, out, "truncated")

	out, err = h.call(t, "fetch_code", tools.FetchCodeInput{FilePath: "f.txt", Offset: 8})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x", 9)+"\n"+strings.Repeat("x", 10), out)
}

func TestFetchCode_LongLineClamped(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, "min.js"), []byte(strings.Repeat("a", 5000)), 0o644))

	out, err := h.call(t, "fetch_code", tools.FetchCodeInput{FilePath: "min.js"})
	require.NoError(t, err)
	assert.Less(t, len(out), 5000)
	assert.Contains(t, out, "truncated")
}

func TestFetchCode_MissingFile(t *testing.T) {
	h := newHarness(t)
	_, err := h.call(t, "fetch_code", tools.FetchCodeInput{FilePath: "nope.txt"})
	assert.Error(t, err)
}
