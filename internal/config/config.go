// Package config loads prdeck configuration from the environment, an
// optional .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingRepo is returned when no owner/repo could be resolved.
var ErrMissingRepo = errors.New("repository owner and name are required")

const (
	envPrefix = "PRDECK"
	envFile   = ".env"
	appDir    = "prdeck"
	fileName  = "config.yaml"
)

// Config is the resolved configuration.
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	Repo   RepoConfig   `mapstructure:"repo"`
	Server ServerConfig `mapstructure:"server"`
}

// GitHubConfig holds API access settings.
type GitHubConfig struct {
	Token          string        `mapstructure:"token"`
	ClientID       string        `mapstructure:"client_id"`
	ClientSecret   string        `mapstructure:"client_secret"`
	APIURL         string        `mapstructure:"api_url"`
	OAuthURL       string        `mapstructure:"oauth_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// RepoConfig selects the repository to browse.
type RepoConfig struct {
	Owner    string `mapstructure:"owner"`
	Name     string `mapstructure:"name"`
	PageSize int    `mapstructure:"page_size"`
}

// ServerConfig holds HTTP API options.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Options point Load at non-default files. Empty fields use the defaults.
type Options struct {
	EnvFile    string
	ConfigFile string
}

// Load resolves configuration. Precedence, highest first: process
// environment, .env file, config file, defaults.
func Load(opts Options) (*Config, error) {
	envPath := opts.EnvFile
	if envPath == "" {
		envPath = envFile
	}
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envPath, err)
	}

	v := viper.New()
	setDefaults(v)
	bindEnvs(v)

	path := opts.ConfigFile
	if path == "" {
		path = DefaultFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.oauth_url", "https://github.com/login/oauth/access_token")
	v.SetDefault("github.request_timeout", 15*time.Second)

	v.SetDefault("repo.page_size", 25)

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
}

// envNames maps keys to the variables they are read from, first set wins.
var envNames = map[string][]string{
	"github.token":            {envPrefix + "_GITHUB_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"},
	"github.client_id":        {envPrefix + "_GITHUB_CLIENT_ID"},
	"github.client_secret":    {envPrefix + "_GITHUB_CLIENT_SECRET"},
	"github.api_url":          {envPrefix + "_GITHUB_API_URL"},
	"github.oauth_url":        {envPrefix + "_GITHUB_OAUTH_URL"},
	"github.request_timeout":  {envPrefix + "_REQUEST_TIMEOUT"},
	"repo.owner":              {envPrefix + "_OWNER"},
	"repo.name":               {envPrefix + "_REPO"},
	"repo.page_size":          {envPrefix + "_PAGE_SIZE"},
	"server.addr":             {envPrefix + "_SERVER_ADDR"},
	"server.shutdown_timeout": {envPrefix + "_SHUTDOWN_TIMEOUT"},
}

func bindEnvs(v *viper.Viper) {
	for key, names := range envNames {
		_ = v.BindEnv(append([]string{key}, names...)...)
	}
}

// Validate checks values that have no sensible fallback.
func (c Config) Validate() error {
	if c.Repo.PageSize < 1 || c.Repo.PageSize > 100 {
		return fmt.Errorf("repo.page_size must be between 1 and 100, got %d", c.Repo.PageSize)
	}
	if c.GitHub.RequestTimeout <= 0 {
		return errors.New("github.request_timeout must be positive")
	}
	if strings.TrimSpace(c.GitHub.APIURL) == "" {
		return errors.New("github.api_url is required")
	}
	return nil
}

// RequireRepo returns ErrMissingRepo unless both owner and name are set.
func (c Config) RequireRepo() error {
	if c.Repo.Owner == "" || c.Repo.Name == "" {
		return ErrMissingRepo
	}
	return nil
}

// DefaultFile is config.yaml in the user config directory, or "" when the
// directory cannot be determined.
func DefaultFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, appDir, fileName)
}

// SaveToken stores token in the config file at path, keeping its other
// settings.
func SaveToken(path, token string) error {
	if path == "" {
		path = DefaultFile()
	}
	if path == "" {
		return errors.New("no config directory available")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	v.Set("github.token", token)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return os.Chmod(path, 0600)
}
