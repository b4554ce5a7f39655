package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIURL is GitHub's REST/GraphQL host.
const DefaultAPIURL = "https://api.github.com"

// Transport runs a GraphQL document and decodes the response's data into
// out. out may be nil, or a *json.RawMessage to keep the data undecoded.
type Transport interface {
	Query(ctx context.Context, query string, vars map[string]any, out any) error
}

type envelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

func decode(body []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(env.Errors) > 0 {
		return &QueryError{Errors: env.Errors}
	}
	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = env.Data
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}

// HTTPTransport posts queries to GitHub's GraphQL endpoint with a token.
type HTTPTransport struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

// NewHTTPTransport targets apiURL + "/graphql". A nil client gets a 30s
// timeout.
func NewHTTPTransport(apiURL, token string, client *http.Client) *HTTPTransport {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{
		Endpoint: strings.TrimRight(apiURL, "/") + "/graphql",
		Token:    token,
		Client:   client,
	}
}

func (t *HTTPTransport) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+t.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("post graphql: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read graphql response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: trimOutput(body)}
	}
	return decode(body, out)
}

// trimOutput returns the first non-empty line of CLI or HTTP output.
func trimOutput(b []byte) string {
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		if l := strings.TrimSpace(line); l != "" {
			return l
		}
	}
	return ""
}
