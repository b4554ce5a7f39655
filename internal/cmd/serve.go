package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"prdeck/internal/auth"
	"prdeck/internal/forge"
	"prdeck/internal/logging"
	"prdeck/internal/server"
	"prdeck/internal/view"
)

// ServeCmd runs the HTTP API
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

// Run executes the serve command
func (s *ServeCmd) Run(cli *CLI) error {
	cfg := cli.settings()
	addr := cfg.Server.Addr
	if s.Addr != "" {
		addr = s.Addr
	}

	client := &http.Client{Timeout: cfg.GitHub.RequestTimeout}
	h := &server.Handlers{
		Auth: &auth.Client{
			APIURL:       cfg.GitHub.APIURL,
			OAuthURL:     cfg.GitHub.OAuthURL,
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			HTTP:         client,
		},
		NewTransport: func(token string) forge.Transport {
			return forge.NewHTTPTransport(cfg.GitHub.APIURL, token, client)
		},
		DefaultToken: cfg.GitHub.Token,
		PageSize:     cfg.Repo.PageSize,
		Views:        &view.Builder{},
	}

	if cfg.GitHub.ClientID == "" {
		logging.Logger.Warn("No OAuth client id configured; /api/auth/token will fail")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Serve(ctx, addr, server.NewRouter(h), cfg.Server.ShutdownTimeout)
}
