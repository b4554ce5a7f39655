package forge

import (
	"context"
	"fmt"

	"prdeck/internal/logging"
	"prdeck/internal/model"
)

// GitHub implements Forge over a Transport.
type GitHub struct {
	t Transport
}

// New returns a GitHub client using t.
func New(t Transport) *GitHub {
	return &GitHub{t: t}
}

func (g *GitHub) Search(ctx context.Context, query string, first int, after string) (*SearchPage, error) {
	var resp struct {
		Search SearchPage `json:"search"`
	}
	if err := g.t.Query(ctx, searchQuery, pageVars(query, first, after), &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	// Issues matched by the query come back as empty objects.
	page := resp.Search
	prs := page.PullRequests[:0]
	for _, pr := range page.PullRequests {
		if pr.ID != "" {
			prs = append(prs, pr)
		}
	}
	page.PullRequests = prs

	logging.Logger.Debug("Search page fetched", "query", query, "after", after, "count", len(prs), "total", page.IssueCount)
	return &page, nil
}

// cursorPage fetches only pagination state.
func (g *GitHub) cursorPage(ctx context.Context, query string, first int, after string) (*SearchPage, error) {
	var resp struct {
		Search SearchPage `json:"search"`
	}
	if err := g.t.Query(ctx, cursorQuery, pageVars(query, first, after), &resp); err != nil {
		return nil, fmt.Errorf("search cursors %q: %w", query, err)
	}
	return &resp.Search, nil
}

func (g *GitHub) PullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	var resp struct {
		Repository *struct {
			PullRequest *model.PullRequest `json:"pullRequest"`
		} `json:"repository"`
	}
	vars := map[string]any{"owner": owner, "name": repo, "number": number}
	if err := g.t.Query(ctx, pullRequestQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("pull request %s/%s#%d: %w", owner, repo, number, err)
	}
	if resp.Repository == nil || resp.Repository.PullRequest == nil {
		return nil, fmt.Errorf("pull request %s/%s#%d: %w", owner, repo, number, ErrNotFound)
	}
	return resp.Repository.PullRequest, nil
}

func (g *GitHub) Viewer(ctx context.Context) (*Viewer, error) {
	var resp struct {
		Viewer Viewer `json:"viewer"`
	}
	if err := g.t.Query(ctx, viewerQuery, nil, &resp); err != nil {
		return nil, fmt.Errorf("viewer: %w", err)
	}
	return &resp.Viewer, nil
}

func pageVars(query string, first int, after string) map[string]any {
	vars := map[string]any{"q": query, "first": first}
	if after != "" {
		vars["after"] = after
	}
	return vars
}
