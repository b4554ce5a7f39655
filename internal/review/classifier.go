// Package review derives a pull request's review/merge lifecycle state from
// its reviews, timeline and flags.
package review

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"prdeck/internal/model"
)

// rule is one row of the classification table. match reports whether the
// rule decides the state; rules are evaluated in order and the first match
// wins.
type rule struct {
	name  string
	match func(c *Classifier, pr *model.PullRequest) (model.ReviewState, bool)
}

var rules = []rule{
	{name: "draft", match: draftRule},
	{name: "merged", match: mergedRule},
	{name: "closed", match: closedRule},
	{name: "approvals", match: approvalsRule},
	{name: "timeline", match: timelineRule},
}

// Classifier resolves ReviewStates. The zero value uses DefaultBots.
type Classifier struct {
	Bots Bots
}

// New returns a Classifier excluding bots. A nil set means DefaultBots.
func New(bots Bots) *Classifier {
	return &Classifier{Bots: bots}
}

var defaultClassifier = &Classifier{}

// Classify resolves pr's state with the default bot set.
func Classify(pr *model.PullRequest) model.ReviewState {
	return defaultClassifier.Classify(pr)
}

// Classify returns exactly one ReviewState for pr. It never fails: missing
// author, reviews or timeline are treated as absent/empty.
func (c *Classifier) Classify(pr *model.PullRequest) model.ReviewState {
	if pr == nil {
		pr = &model.PullRequest{}
	}
	for _, r := range rules {
		if st, ok := r.match(c, pr); ok {
			return st
		}
	}
	// timelineRule always matches; kept for completeness.
	return model.ReviewState{State: model.StateUnassigned, Reason: reasonNoActivity}
}

const (
	reasonNoActivity = "No activity, approvals, or assignees found."
	reasonOnlyBots   = "Only bot activities found; no valid reviewer."
)

func (c *Classifier) isBot(login string) bool {
	if c.Bots == nil {
		return DefaultBots.Contains(login)
	}
	return c.Bots.Contains(login)
}

// isAuthor is false whenever the PR has no author.
func isAuthor(pr *model.PullRequest, login string) bool {
	author := model.LoginOf(pr.Author)
	return author != "" && login == author
}

func draftRule(_ *Classifier, pr *model.PullRequest) (model.ReviewState, bool) {
	if !pr.IsDraft {
		return model.ReviewState{}, false
	}
	return model.ReviewState{State: model.StateDraft, Reason: "The PR is marked as draft."}, true
}

func mergedRule(_ *Classifier, pr *model.PullRequest) (model.ReviewState, bool) {
	if !pr.Merged {
		return model.ReviewState{}, false
	}
	return model.ReviewState{State: model.StateMerged, Reason: "The PR has been merged."}, true
}

func closedRule(_ *Classifier, pr *model.PullRequest) (model.ReviewState, bool) {
	if pr.State != model.PRStateClosed {
		return model.ReviewState{}, false
	}
	return model.ReviewState{State: model.StateClosed, Reason: "The PR is closed."}, true
}

func approvalsRule(c *Classifier, pr *model.PullRequest) (model.ReviewState, bool) {
	approved := c.approvedReviewers(pr)
	logins := make([]string, len(approved))
	for i, r := range approved {
		logins[i] = r.Login
	}

	switch {
	case len(approved) >= 2:
		return model.ReviewState{
			State:     model.StateApproved,
			Reason:    fmt.Sprintf("Approved by %s.", strings.Join(logins, ", ")),
			Reviewers: approved,
		}, true
	case len(approved) == 1:
		return model.ReviewState{
			State:     model.StateReviewPending,
			Reason:    fmt.Sprintf("1 approval from %s; at least 2 required for approval.", logins[0]),
			Reviewers: approved,
		}, true
	}
	return model.ReviewState{}, false
}

// approvedReviewers returns distinct non-author, non-bot approvers in
// first-seen order.
func (c *Classifier) approvedReviewers(pr *model.PullRequest) []model.Reviewer {
	var out []model.Reviewer
	seen := make(map[string]int)
	for _, r := range pr.Reviews.Nodes {
		if r.Author == nil || r.State != model.ReviewApproved {
			continue
		}
		login := r.Author.Login
		if isAuthor(pr, login) || c.isBot(login) {
			continue
		}
		if i, ok := seen[login]; ok {
			out[i].AvatarURL = r.Author.AvatarURL
			continue
		}
		seen[login] = len(out)
		out = append(out, model.Reviewer{Login: login, AvatarURL: r.Author.AvatarURL})
	}
	return out
}

// activity is a timeline event reduced to who did what when.
type activity struct {
	time time.Time
	user string
	kind string
}

func activities(pr *model.PullRequest) []activity {
	out := make([]activity, 0, len(pr.TimelineItems.Nodes))
	for _, item := range pr.TimelineItems.Nodes {
		a := activity{kind: item.Typename}
		if item.Typename == model.EventCommit {
			if item.Commit != nil {
				a.time = item.Commit.AuthoredDate
				if item.Commit.Author != nil {
					a.user = model.LoginOf(item.Commit.Author.User)
				}
			}
		} else {
			a.time = item.CreatedAt
			if a.time.IsZero() {
				a.time = item.UpdatedAt
			}
			switch {
			case item.Author != nil:
				a.user = item.Author.Login
			case item.Assignee != nil:
				a.user = item.Assignee.Login
			}
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].time.Before(out[j].time) })
	return out
}

func timelineRule(c *Classifier, pr *model.PullRequest) (model.ReviewState, bool) {
	acts := activities(pr)
	if len(acts) == 0 {
		return model.ReviewState{State: model.StateUnassigned, Reason: reasonNoActivity}, true
	}

	var last *activity
	for i := len(acts) - 1; i >= 0; i-- {
		if !c.isBot(acts[i].user) {
			last = &acts[i]
			break
		}
	}
	if last == nil {
		return model.ReviewState{State: model.StateUnassigned, Reason: reasonOnlyBots}, true
	}

	if isAuthor(pr, last.user) {
		return model.ReviewState{
			State:  model.StateReviewPending,
			Reason: fmt.Sprintf("Last activity (%s) was by the PR author (%s).", last.kind, last.user),
		}, true
	}

	if last.kind != model.EventReview {
		return model.ReviewState{
			State:  model.StateChangesRequested,
			Reason: fmt.Sprintf("Last %s was by %s.", last.kind, last.user),
		}, true
	}

	if r := findReview(pr, last.user, last.time); r != nil && r.State == model.ReviewApproved {
		return model.ReviewState{
			State:     model.StateReviewPending,
			Reason:    fmt.Sprintf("Last review approved by %s.", last.user),
			Reviewers: []model.Reviewer{{Login: r.Author.Login, AvatarURL: r.Author.AvatarURL}},
		}, true
	}
	return model.ReviewState{
		State:  model.StateChangesRequested,
		Reason: fmt.Sprintf("Last review by %s did not approve.", last.user),
	}, true
}

// findReview returns the first review by login submitted exactly at t.
// At most one review per author per timestamp is assumed.
func findReview(pr *model.PullRequest, login string, t time.Time) *model.Review {
	for i := range pr.Reviews.Nodes {
		r := &pr.Reviews.Nodes[i]
		if r.Author == nil || r.Author.Login != login || r.SubmittedAt == nil {
			continue
		}
		if r.SubmittedAt.Equal(t) {
			return r
		}
	}
	return nil
}
