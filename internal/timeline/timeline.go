// Package timeline renders a pull request's timeline items as a readable
// activity feed.
package timeline

import (
	"fmt"
	"time"

	"prdeck/internal/model"
)

// Activity is one line of the feed.
type Activity struct {
	Type    string       `json:"type"`
	Author  *model.Actor `json:"author"`
	Date    time.Time    `json:"date"`
	Message string       `json:"message"`
}

// Feed is the rendered timeline plus the total number of events GitHub
// reports, which may exceed the fetched page.
type Feed struct {
	Activities  []Activity `json:"activities"`
	TotalEvents int        `json:"totalEvents"`
}

// Activities maps pr's timeline in order. Runs of consecutive commits are
// folded into a single activity dated at the last commit of the run.
func Activities(pr *model.PullRequest) Feed {
	if pr == nil {
		return Feed{Activities: []Activity{}}
	}

	out := make([]Activity, 0, len(pr.TimelineItems.Nodes))
	for _, item := range pr.TimelineItems.Nodes {
		a := toActivity(item)
		if n := len(out); n > 0 && a.Type == model.EventCommit && out[n-1].Type == model.EventCommit {
			out[n-1].Message += "; " + a.Message
			out[n-1].Date = a.Date
			continue
		}
		out = append(out, a)
	}
	return Feed{Activities: out, TotalEvents: pr.TimelineItems.TotalCount}
}

func toActivity(item model.TimelineItem) Activity {
	a := Activity{Type: item.Typename}
	switch item.Typename {
	case model.EventAssigned:
		a.Date = item.CreatedAt
		a.Author = item.Assignee
		a.Message = "Assigned to " + model.LoginOf(item.Assignee)
	case model.EventReview:
		a.Date = item.UpdatedAt
		a.Author = item.Author
		a.Message = ReviewMessage(item.State, item.Comments.TotalCount, item.BodyText)
	case model.EventCommit:
		if item.Commit != nil {
			a.Date = item.Commit.AuthoredDate
			a.Message = item.Commit.AbbreviatedOid
		}
	case model.EventIssueComment:
		a.Date = item.UpdatedAt
		a.Author = item.Author
		a.Message = item.BodyText
	default:
		a.Message = "Unknown event"
	}
	return a
}

// ReviewMessage summarises a review. comments counts the review's line
// comments, not its body.
func ReviewMessage(state model.ReviewStatus, comments int, body string) string {
	switch state {
	case model.ReviewApproved:
		if comments > 0 {
			return fmt.Sprintf("Approved with %d comments", comments)
		}
		return "Approved"
	case model.ReviewChangesRequested:
		return "Changes Requested: " + body
	case model.ReviewCommented:
		if comments > 0 {
			return fmt.Sprintf("Left %d comments", comments)
		}
		return "Left a comment"
	}
	return "reviewed"
}
