package gantt

import (
	"sort"
	"strings"
	"time"

	"prdeck/internal/model"
)

// kindOpened marks the synthetic event placed at the PR's creation time.
const kindOpened = "PullRequestOpened"

const snippetLen = 50

// event is a timeline item reduced to the fields the phase walk needs.
type event struct {
	kind  string
	date  time.Time
	actor *model.Actor
	item  model.TimelineItem
	index int // position in timelineItems, -1 for the synthetic event
}

// normalize keeps the timeline variants that shape phases, adds the opened
// event and sorts everything by date. The opened event sorts ahead of any
// event sharing its timestamp.
func normalize(pr *model.PullRequest) []event {
	events := []event{{kind: kindOpened, date: pr.CreatedAt, actor: pr.Author, index: -1}}

	for i, item := range pr.TimelineItems.Nodes {
		ev := event{kind: item.Typename, item: item, index: i}
		switch item.Typename {
		case model.EventIssueComment:
			ev.date, ev.actor = item.CreatedAt, item.Author
		case model.EventReviewRequested:
			ev.date, ev.actor = item.CreatedAt, item.Actor
		case model.EventReview:
			ev.date, ev.actor = item.SubmittedAt, item.Author
		case model.EventMerged, model.EventClosed:
			ev.date, ev.actor = item.CreatedAt, item.Actor
		default:
			continue
		}
		if ev.date.IsZero() {
			continue
		}
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].date.Before(events[j].date) })
	return events
}

// snippet quotes the first 50 runes of s, with an ellipsis when cut.
func snippet(s string) string {
	r := []rune(s)
	if len(r) > snippetLen {
		s = string(r[:snippetLen]) + "..."
	}
	return `"` + s + `"`
}

func reviewBody(item model.TimelineItem) string {
	if item.Body != "" {
		return item.Body
	}
	return item.BodyText
}

func loginOr(a *model.Actor, fallback string) string {
	if l := model.LoginOf(a); l != "" {
		return l
	}
	return fallback
}

func requestedFrom(r *model.RequestedReviewer) string {
	switch {
	case r == nil:
		return "N/A"
	case r.Typename == "User" && r.Login != "":
		return r.Login
	case r.Typename == "User" && r.UserName != "":
		return r.UserName
	case r.Name != "":
		return r.Name
	case r.Login != "":
		return r.Login
	}
	return "N/A"
}

// describe is the log text of an event that starts a phase.
func describe(pr *model.PullRequest, ev event) string {
	switch ev.kind {
	case kindOpened:
		return "PR Opened by " + loginOr(pr.Author, "Unknown")
	case model.EventReviewRequested:
		return "Review requested from " + requestedFrom(ev.item.RequestedReviewer)
	case model.EventReview:
		text := "Review " + strings.ReplaceAll(strings.ToLower(string(ev.item.State)), "_", " ")
		if body := reviewBody(ev.item); body != "" {
			text += " - " + snippet(body)
		}
		return text
	case model.EventIssueComment:
		return "Commented - " + snippet(ev.item.BodyText)
	case model.EventMerged:
		return "PR Merged by " + loginOr(ev.actor, "Unknown")
	case model.EventClosed:
		return "PR Closed by " + loginOr(ev.actor, "Unknown")
	}
	return ""
}

// describeMinor is the log text of an event absorbed into a running phase,
// or "" when the event is not a minor one.
func describeMinor(ev event) string {
	switch {
	case ev.kind == model.EventIssueComment:
		return "Commented - " + snippet(ev.item.BodyText)
	case ev.kind == model.EventReview && ev.item.State == model.ReviewCommented:
		return "Review Comment - " + snippet(reviewBody(ev.item))
	}
	return ""
}
