// Package forge talks to GitHub's GraphQL API, either through the gh CLI or
// directly over HTTPS.
package forge

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"prdeck/internal/model"
)

var (
	// ErrNotFound is matched by errors for missing repositories or PRs.
	ErrNotFound = errors.New("not found")
	// ErrNoCredentials means neither a token nor the gh CLI is available.
	ErrNoCredentials = errors.New("no GitHub token configured and gh CLI not found")
)

// Forge is the read side of GitHub the dashboard needs.
type Forge interface {
	Search(ctx context.Context, query string, first int, after string) (*SearchPage, error)
	PullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error)
	Viewer(ctx context.Context) (*Viewer, error)
}

// PageInfo is GraphQL cursor pagination state.
type PageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// SearchPage is one page of an issue search restricted to pull requests.
type SearchPage struct {
	IssueCount   int                 `json:"issueCount"`
	PageInfo     PageInfo            `json:"pageInfo"`
	PullRequests []model.PullRequest `json:"nodes"`
}

// Repository is a repository summary.
type Repository struct {
	Name  string      `json:"name"`
	URL   string      `json:"url"`
	Owner model.Actor `json:"owner"`
}

// Viewer is the authenticated user and their recently pushed repositories.
type Viewer struct {
	Login        string `json:"login"`
	AvatarURL    string `json:"avatarUrl"`
	Repositories struct {
		Nodes []Repository `json:"nodes"`
	} `json:"repositories"`
}

// Detect picks a transport: HTTPS when a token is given, otherwise the gh
// CLI when it is on PATH.
func Detect(apiURL, token string) (Transport, error) {
	if strings.TrimSpace(token) != "" {
		return NewHTTPTransport(apiURL, token, nil), nil
	}
	if path, err := exec.LookPath("gh"); err == nil {
		return &GHTransport{Bin: path}, nil
	}
	return nil, ErrNoCredentials
}
