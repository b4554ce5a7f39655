package badge

import (
	"fmt"
	"strings"

	"prdeck/internal/collections"
	"prdeck/internal/colorscale"
	"prdeck/internal/model"
)

var (
	diffScale = colorscale.Scale{
		{Start: 0, Color: ColorSuccess},
		{Start: 100, Color: ColorAttention},
		{Start: 200, Color: ColorDanger},
	}
	commentScale = colorscale.Scale{
		{Start: 10, Color: ColorDanger},
		{Start: 5, Color: ColorAttention},
	}
)

// PRStats is the size and open-discussion summary of a pull request.
type PRStats struct {
	Diff          Badge    `json:"diff"`
	OpenComments  int      `json:"openComments"`
	CommentsColor string   `json:"commentsColor,omitempty"`
	Commenters    []string `json:"commenters"`
}

// DiffWeight scores a change: the larger of additions and deletions plus
// ten per touched file.
func DiffWeight(pr *model.PullRequest) int {
	return max(pr.Additions, pr.Deletions) + 10*pr.ChangedFiles
}

// Stats counts review comments that are neither outdated nor minimized and
// colours the diff size.
func Stats(pr *model.PullRequest) PRStats {
	var open []model.ReviewComment
	for _, r := range pr.Reviews.Nodes {
		for _, c := range r.Comments.Nodes {
			if c.Outdated || c.IsMinimized {
				continue
			}
			open = append(open, c)
		}
	}

	logins := make([]any, 0, len(open))
	for _, c := range open {
		if c.Author != nil {
			logins = append(logins, c.Author.Login)
		} else {
			logins = append(logins, nil)
		}
	}

	return PRStats{
		Diff: Badge{
			Text:  fmt.Sprintf("+%d, -%d, Files: %d", pr.Additions, pr.Deletions, pr.ChangedFiles),
			Color: diffScale.Color(float64(DiffWeight(pr)), ColorNeutral),
		},
		OpenComments:  len(open),
		CommentsColor: commentScale.Color(float64(len(open)), ""),
		Commenters:    collections.UniqueStrings(logins),
	}
}

// CommentsText is the open-comments line, or "" when there are none.
func (s PRStats) CommentsText() string {
	if s.OpenComments == 0 {
		return ""
	}
	return fmt.Sprintf("Open comments: %d from %s", s.OpenComments, strings.Join(s.Commenters, ", "))
}
