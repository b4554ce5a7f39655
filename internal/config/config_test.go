package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, names := range envNames {
		for _, n := range names {
			t.Setenv(n, "")
		}
	}
}

func missing(t *testing.T) Options {
	dir := t.TempDir()
	return Options{EnvFile: filepath.Join(dir, "none.env"), ConfigFile: filepath.Join(dir, "none.yaml")}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missing(t))

	require.NoError(t, err)
	assert.Equal(t, "https://api.github.com", cfg.GitHub.APIURL)
	assert.Equal(t, 15*time.Second, cfg.GitHub.RequestTimeout)
	assert.Equal(t, 25, cfg.Repo.PageSize)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.ErrorIs(t, cfg.RequireRepo(), ErrMissingRepo)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRDECK_OWNER", "octo")
	t.Setenv("PRDECK_REPO", "cat")
	t.Setenv("PRDECK_PAGE_SIZE", "50")
	t.Setenv("PRDECK_REQUEST_TIMEOUT", "30s")
	t.Setenv("GH_TOKEN", "gh-token")

	cfg, err := Load(missing(t))

	require.NoError(t, err)
	assert.Equal(t, "octo", cfg.Repo.Owner)
	assert.Equal(t, "cat", cfg.Repo.Name)
	assert.Equal(t, 50, cfg.Repo.PageSize)
	assert.Equal(t, 30*time.Second, cfg.GitHub.RequestTimeout)
	assert.Equal(t, "gh-token", cfg.GitHub.Token)
	assert.NoError(t, cfg.RequireRepo())
}

func TestLoadPrefixedTokenWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRDECK_GITHUB_TOKEN", "mine")
	t.Setenv("GITHUB_TOKEN", "other")

	cfg, err := Load(missing(t))

	require.NoError(t, err)
	assert.Equal(t, "mine", cfg.GitHub.Token)
}

func TestLoadEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRDECK_OWNER", "from-env")
	t.Cleanup(func() { os.Unsetenv("PRDECK_SERVER_ADDR") })
	os.Unsetenv("PRDECK_SERVER_ADDR")

	opts := missing(t)
	require.NoError(t, os.WriteFile(opts.EnvFile, []byte("PRDECK_OWNER=from-file\nPRDECK_SERVER_ADDR=:9999\n"), 0600))

	cfg, err := Load(opts)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Repo.Owner)
	assert.Equal(t, ":9999", cfg.Server.Addr)
}

func TestLoadUnreadableEnvFile(t *testing.T) {
	clearEnv(t)
	opts := missing(t)
	opts.EnvFile = t.TempDir()

	_, err := Load(opts)

	assert.ErrorContains(t, err, opts.EnvFile)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	opts := missing(t)
	require.NoError(t, os.WriteFile(opts.ConfigFile, []byte("repo:\n  owner: yaml-owner\n  name: yaml-repo\n"), 0600))

	cfg, err := Load(opts)

	require.NoError(t, err)
	assert.Equal(t, "yaml-owner", cfg.Repo.Owner)
	assert.Equal(t, "yaml-repo", cfg.Repo.Name)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRDECK_PAGE_SIZE", "500")

	_, err := Load(missing(t))

	assert.ErrorContains(t, err, "page_size")
}

func TestSaveToken(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "prdeck", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte("repo:\n  owner: keep\n"), 0600))

	require.NoError(t, SaveToken(path, "secret"))

	cfg, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "none.env"), ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.GitHub.Token)
	assert.Equal(t, "keep", cfg.Repo.Owner)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
