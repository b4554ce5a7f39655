// Package auth validates GitHub tokens and performs the OAuth code
// exchange through golang.org/x/oauth2.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"prdeck/internal/logging"
)

var (
	// ErrUnauthorized means GitHub rejected the token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMissingCode means no OAuth code was supplied.
	ErrMissingCode = errors.New("missing code parameter")
)

const (
	DefaultAPIURL   = "https://api.github.com"
	DefaultOAuthURL = "https://github.com/login/oauth/access_token"
)

// Client talks to GitHub's user and OAuth endpoints.
type Client struct {
	APIURL       string
	OAuthURL     string
	ClientID     string
	ClientSecret string
	HTTP         *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// Validate checks token against GET /user. It returns ErrUnauthorized for
// any non-2xx answer.
func (c *Client) Validate(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrUnauthorized
	}
	base := c.APIURL
	if base == "" {
		base = DefaultAPIURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/user", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("validate token: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Logger.Debug("Token validation failed", "status", resp.StatusCode)
		return ErrUnauthorized
	}
	return nil
}

// ExchangeError is GitHub's answer when a code could not be exchanged. Raw
// is the error as a JSON object, suitable for relaying to a browser.
type ExchangeError struct {
	Code        string          `json:"error"`
	Description string          `json:"error_description,omitempty"`
	URI         string          `json:"error_uri,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

func (e *ExchangeError) Error() string {
	if e.Code == "" {
		return "exchange code: no access token returned"
	}
	return fmt.Sprintf("exchange code: %s: %s", e.Code, e.Description)
}

func (c *Client) oauthConfig() *oauth2.Config {
	endpoint := github.Endpoint
	if c.OAuthURL != "" {
		endpoint.TokenURL = c.OAuthURL
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
	}
}

// Exchange trades an OAuth authorization code for an access token.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", ErrMissingCode
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient())

	tok, err := c.oauthConfig().Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return "", exchangeError(re)
		}
		return "", fmt.Errorf("exchange code: %w", err)
	}
	return tok.AccessToken, nil
}

// exchangeError converts a token endpoint failure. GitHub answers in form
// encoding unless asked for JSON, so Raw is rebuilt from the parsed fields
// when the body is not JSON.
func exchangeError(re *oauth2.RetrieveError) *ExchangeError {
	logging.Logger.Debug("Code exchange failed", "error", re.ErrorCode)
	xe := &ExchangeError{Code: re.ErrorCode, Description: re.ErrorDescription, URI: re.ErrorURI}
	if json.Valid(re.Body) {
		xe.Raw = re.Body
		return xe
	}
	if xe.Code == "" {
		xe.Code = "exchange_failed"
		if re.Response != nil {
			xe.Description = re.Response.Status
		}
	}
	xe.Raw, _ = json.Marshal(xe)
	return xe
}
