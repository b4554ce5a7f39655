package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"prdeck/internal/auth"
	"prdeck/internal/config"
	"prdeck/internal/logging"
)

const loginTimeout = 15 * time.Second

// LoginCmd stores a personal access token
type LoginCmd struct {
	Token string `help:"Token to store; prompts when empty" env:"PRDECK_LOGIN_TOKEN"`
}

type tokenValidator interface {
	Validate(ctx context.Context, token string) error
}

// Run executes the login command
func (l *LoginCmd) Run(cli *CLI) error {
	token := strings.TrimSpace(l.Token)
	if token == "" {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("GitHub token").
					Description("A personal access token with repo and read:user scopes.").
					EchoMode(huh.EchoModePassword).
					Value(&token).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return errors.New("token cannot be empty")
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("login cancelled: %w", err)
		}
	}

	cfg := cli.settings()
	client := &auth.Client{
		APIURL: cfg.GitHub.APIURL,
		HTTP:   &http.Client{Timeout: cfg.GitHub.RequestTimeout},
	}
	path := cli.Config
	if path == "" {
		path = config.DefaultFile()
	}
	if err := storeToken(context.Background(), client, path, token); err != nil {
		return err
	}
	fmt.Printf("Token saved to %s\n", path)
	return nil
}

// storeToken checks token against GitHub before writing it to path.
func storeToken(ctx context.Context, v tokenValidator, path, token string) error {
	token = strings.TrimSpace(token)
	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	if err := v.Validate(ctx, token); err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			return errors.New("GitHub rejected the token")
		}
		return err
	}
	if err := config.SaveToken(path, token); err != nil {
		return err
	}
	logging.Logger.Info("Token stored", "path", path)
	return nil
}
