// Package cmd holds the prdeck command line.
package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kong"

	"prdeck/internal/config"
	"prdeck/internal/forge"
	"prdeck/internal/git"
	"prdeck/internal/logging"
)

// CLI represents the command-line interface structure
type CLI struct {
	Version     kong.VersionFlag `help:"Show version information"`
	Debug       bool             `help:"Enable debug logging to file" short:"d"`
	DebugFile   string           `help:"Custom path for debug log file (disables automatic cleanup)"`
	MaxLogFiles int              `help:"Maximum number of log files to keep (0 = unlimited)" default:"100"`
	Owner       string           `help:"Repository owner (defaults to the origin remote)" short:"o"`
	Repo        string           `help:"Repository name (defaults to the origin remote)" short:"r"`
	Config      string           `help:"Path to the config file" type:"path"`
	EnvFile     string           `help:"Path to a .env file" default:".env" type:"path"`

	Run   RunCmd   `cmd:"" help:"Browse pull requests in the terminal (default)" default:"1"`
	Show  ShowCmd  `cmd:"show" help:"Print a pull request's review state, badges and phases"`
	Serve ServeCmd `cmd:"serve" help:"Serve the dashboard API over HTTP"`
	Login LoginCmd `cmd:"login" help:"Validate a GitHub token and store it in the config file"`

	// Internal fields (not flags)
	cfg *config.Config `kong:"-"`
}

// AfterApply initializes logging and loads configuration after CLI parsing
func (c *CLI) AfterApply() error {
	logFilePath, err := logging.Initialize(c.Debug, c.DebugFile, c.MaxLogFiles)
	if err != nil {
		return err
	}

	// Child processes (gh) inherit the same log settings
	if c.Debug || c.DebugFile != "" {
		os.Setenv("PRDECK_DEBUG", "1")
		if logFilePath != "" {
			os.Setenv("PRDECK_DEBUG_FILE", logFilePath)
		}
	}
	if c.MaxLogFiles != logging.DefaultMaxLogFiles {
		os.Setenv("PRDECK_MAX_LOG_FILES", fmt.Sprintf("%d", c.MaxLogFiles))
	}

	cfg, err := config.Load(config.Options{EnvFile: c.EnvFile, ConfigFile: c.Config})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	c.cfg = cfg

	logging.Logger.Debug("Configuration loaded",
		"owner", cfg.Repo.Owner,
		"repo", cfg.Repo.Name,
		"api_url", cfg.GitHub.APIURL,
		"has_token", cfg.GitHub.Token != "")
	return nil
}

// settings returns the loaded configuration, or the defaults when
// AfterApply has not run.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		cfg, err := config.Load(config.Options{EnvFile: c.EnvFile, ConfigFile: c.Config})
		if err != nil {
			cfg = &config.Config{}
		}
		c.cfg = cfg
	}
	return c.cfg
}

// repository resolves owner and name: flags, then configuration, then the
// origin remote of the current git repository.
func (c *CLI) repository() (owner, name string, err error) {
	cfg := c.settings()
	owner, name = cfg.Repo.Owner, cfg.Repo.Name
	if c.Owner != "" {
		owner = c.Owner
	}
	if c.Repo != "" {
		name = c.Repo
	}
	if owner != "" && name != "" {
		return owner, name, nil
	}

	root, rootErr := git.RepoRoot()
	if rootErr != nil {
		return "", "", config.ErrMissingRepo
	}
	remoteOwner, remoteName, remoteErr := git.OriginRepo(root)
	if remoteErr != nil {
		logging.Logger.Debug("No usable origin remote", "dir", root, "error", remoteErr)
		return "", "", config.ErrMissingRepo
	}
	if owner == "" {
		owner = remoteOwner
	}
	if name == "" {
		name = remoteName
	}
	return owner, name, nil
}

// transport builds a GitHub transport for token, falling back to the gh
// CLI when token is empty.
func (c *CLI) transport(token string) (forge.Transport, error) {
	cfg := c.settings()
	if token != "" {
		return forge.NewHTTPTransport(cfg.GitHub.APIURL, token, &http.Client{Timeout: cfg.GitHub.RequestTimeout}), nil
	}
	t, err := forge.Detect(cfg.GitHub.APIURL, "")
	if err != nil {
		return nil, err
	}
	if gh, ok := t.(*forge.GHTransport); ok {
		gh.Timeout = cfg.GitHub.RequestTimeout
	}
	return t, nil
}

// service is the deduplicating GitHub client used by the commands.
func (c *CLI) service() (*forge.Service, error) {
	t, err := c.transport(c.settings().GitHub.Token)
	if err != nil {
		return nil, err
	}
	return forge.NewService(forge.New(t)), nil
}
