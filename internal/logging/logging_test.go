package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDiscardsByDefault(t *testing.T) {
	t.Setenv("PRDECK_DEBUG", "")
	t.Setenv("PRDECK_DEBUG_FILE", "")

	path, err := Initialize(false, "", DefaultMaxLogFiles)

	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NotNil(t, Logger)
}

func TestInitializeDebugFile(t *testing.T) {
	t.Setenv("PRDECK_DEBUG", "")
	t.Setenv("PRDECK_DEBUG_FILE", "")
	file := filepath.Join(t.TempDir(), "nested", "debug.log")

	path, err := Initialize(false, file, DefaultMaxLogFiles)
	require.NoError(t, err)
	assert.Equal(t, file, path)

	Logger.Debug("hello", "k", "v")
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestInitializeDebugFileFromEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "env.log")
	t.Setenv("PRDECK_DEBUG_FILE", file)

	path, err := Initialize(false, "", DefaultMaxLogFiles)

	require.NoError(t, err)
	assert.Equal(t, file, path)
}

func TestRotate(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"a.log", "b.log", "c.log", "keep.txt"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, nil, 0644))
		mt := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(p, mt, mt))
	}

	require.NoError(t, rotate(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"c.log", "keep.txt"}, names)
}
