package forge

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"prdeck/internal/logging"
	"prdeck/internal/model"
)

const detailConcurrency = 4

// Service sits in front of a GitHub client. Identical requests in flight at
// the same time share one round trip.
type Service struct {
	gh    *GitHub
	group singleflight.Group
}

// NewService wraps gh.
func NewService(gh *GitHub) *Service {
	return &Service{gh: gh}
}

func (s *Service) Search(ctx context.Context, query string, first int, after string) (*SearchPage, error) {
	key := "search\x00" + query + "\x00" + strconv.Itoa(first) + "\x00" + after
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.gh.Search(ctx, query, first, after)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logging.Logger.Debug("Search shared with in-flight request", "query", query)
	}
	return v.(*SearchPage), nil
}

func (s *Service) PullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	key := fmt.Sprintf("pr\x00%s/%s#%d", owner, repo, number)
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.gh.PullRequest(ctx, owner, repo, number)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.PullRequest), nil
}

func (s *Service) Viewer(ctx context.Context) (*Viewer, error) {
	v, err, _ := s.group.Do("viewer", func() (any, error) {
		return s.gh.Viewer(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Viewer), nil
}

// Details fetches several pull requests concurrently. The result is in the
// order of numbers; the first failure cancels the rest.
func (s *Service) Details(ctx context.Context, owner, repo string, numbers []int) ([]*model.PullRequest, error) {
	out := make([]*model.PullRequest, len(numbers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(detailConcurrency)
	for i, n := range numbers {
		g.Go(func() error {
			pr, err := s.PullRequest(ctx, owner, repo, n)
			if err != nil {
				return err
			}
			out[i] = pr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Cursors walks query's pages and returns the "after" cursor of every page:
// "" for the first, then each page's end cursor while more pages follow.
func (s *Service) Cursors(ctx context.Context, query string, first int) ([]string, error) {
	cursors := []string{""}
	after := ""
	for {
		page, err := s.gh.cursorPage(ctx, query, first, after)
		if err != nil {
			return nil, err
		}
		if !page.PageInfo.HasNextPage || page.PageInfo.EndCursor == "" {
			break
		}
		after = page.PageInfo.EndCursor
		cursors = append(cursors, after)
	}
	logging.Logger.Debug("Page cursors fetched", "query", query, "pages", len(cursors))
	return cursors, nil
}

var _ Forge = (*Service)(nil)
var _ Forge = (*GitHub)(nil)
