package model

import (
	"slices"
	"time"
)

// PRState is GitHub's PullRequestState enum.
type PRState string

const (
	PRStateOpen   PRState = "OPEN"
	PRStateClosed PRState = "CLOSED"
	PRStateMerged PRState = "MERGED"
)

// ReviewStatus is GitHub's PullRequestReviewState enum.
type ReviewStatus string

const (
	ReviewApproved         ReviewStatus = "APPROVED"
	ReviewChangesRequested ReviewStatus = "CHANGES_REQUESTED"
	ReviewCommented        ReviewStatus = "COMMENTED"
	ReviewDismissed        ReviewStatus = "DISMISSED"
	ReviewPending          ReviewStatus = "PENDING"
)

// Timeline item __typename values we understand.
const (
	EventAssigned        = "AssignedEvent"
	EventReview          = "PullRequestReview"
	EventCommit          = "PullRequestCommit"
	EventIssueComment    = "IssueComment"
	EventReviewRequested = "ReviewRequestedEvent"
	EventMerged          = "MergedEvent"
	EventClosed          = "ClosedEvent"
)

// Actor is any GitHub login-bearing entity (User, Bot, Mannequin).
type Actor struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// LoginOf returns a's login, or "" for a nil actor.
func LoginOf(a *Actor) string {
	if a == nil {
		return ""
	}
	return a.Login
}

// AssigneeLogins lists the distinct assignee logins of pr in order.
func AssigneeLogins(pr *PullRequest) []string {
	if pr == nil {
		return nil
	}
	var out []string
	for _, a := range pr.Assignees.Nodes {
		if a.Login != "" && !slices.Contains(out, a.Login) {
			out = append(out, a.Login)
		}
	}
	return out
}

// PullRequest mirrors the subset of GitHub's GraphQL PullRequest object the
// dashboard queries. Field names follow the GraphQL schema so a response can
// be decoded verbatim.
type PullRequest struct {
	ID           string     `json:"id"`
	Number       int        `json:"number"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	State        PRState    `json:"state"`
	IsDraft      bool       `json:"isDraft"`
	Merged       bool       `json:"merged"`
	Mergeable    string     `json:"mergeable,omitempty"` // "MERGEABLE", "CONFLICTING", "UNKNOWN"
	Author       *Actor     `json:"author"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastEditedAt *time.Time `json:"lastEditedAt,omitempty"`
	MergedAt     *time.Time `json:"mergedAt,omitempty"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
	Additions    int        `json:"additions"`
	Deletions    int        `json:"deletions"`
	ChangedFiles int        `json:"changedFiles"`

	Labels        LabelConnection    `json:"labels"`
	Assignees     ActorConnection    `json:"assignees"`
	Reviews       ReviewConnection   `json:"reviews"`
	TimelineItems TimelineConnection `json:"timelineItems"`
	Commits       CommitConnection   `json:"commits"`
}

type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type LabelConnection struct {
	Nodes []Label `json:"nodes"`
}

type ActorConnection struct {
	Nodes []Actor `json:"nodes"`
}

// Review is a PullRequestReview node.
type Review struct {
	ID          string                  `json:"id,omitempty"`
	Author      *Actor                  `json:"author"`
	State       ReviewStatus            `json:"state"`
	SubmittedAt *time.Time              `json:"submittedAt,omitempty"`
	UpdatedAt   *time.Time              `json:"updatedAt,omitempty"`
	BodyText    string                  `json:"bodyText,omitempty"`
	Comments    ReviewCommentConnection `json:"comments"`
}

type ReviewConnection struct {
	TotalCount int      `json:"totalCount"`
	Nodes      []Review `json:"nodes"`
}

type ReviewComment struct {
	Author      *Actor `json:"author"`
	Outdated    bool   `json:"outdated"`
	IsMinimized bool   `json:"isMinimized"`
}

type ReviewCommentConnection struct {
	TotalCount int             `json:"totalCount"`
	Nodes      []ReviewComment `json:"nodes,omitempty"`
}

// RequestedReviewer is the User | Team | Mannequin union on
// ReviewRequestedEvent. Name is the team name; a user's name is aliased to
// UserName because User.name and Team.name have different nullability.
type RequestedReviewer struct {
	Typename string `json:"__typename"`
	Login    string `json:"login,omitempty"`
	Name     string `json:"name,omitempty"`
	UserName string `json:"userName,omitempty"`
}

// GitActor is the author of a git commit; User is nil when the commit email
// does not map to a GitHub account.
type GitActor struct {
	User *Actor `json:"user"`
}

type Commit struct {
	AbbreviatedOid    string             `json:"abbreviatedOid"`
	AuthoredDate      time.Time          `json:"authoredDate"`
	Author            *GitActor          `json:"author"`
	StatusCheckRollup *StatusCheckRollup `json:"statusCheckRollup,omitempty"`
}

// TimelineItem is the flattened PullRequestTimelineItems union. Typename
// selects which of the remaining fields are meaningful.
type TimelineItem struct {
	Typename string `json:"__typename"`
	ID       string `json:"id,omitempty"`

	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	SubmittedAt time.Time `json:"submittedAt"`

	Author   *Actor `json:"author,omitempty"`
	Actor    *Actor `json:"actor,omitempty"`
	Assignee *Actor `json:"assignee,omitempty"`

	State             ReviewStatus            `json:"state,omitempty"` // PullRequestReview
	Body              string                  `json:"body,omitempty"`
	BodyText          string                  `json:"bodyText,omitempty"`
	Comments          ReviewCommentConnection `json:"comments"`
	Commit            *Commit                 `json:"commit,omitempty"`            // PullRequestCommit
	RequestedReviewer *RequestedReviewer      `json:"requestedReviewer,omitempty"` // ReviewRequestedEvent
}

type TimelineConnection struct {
	TotalCount int            `json:"totalCount"`
	Nodes      []TimelineItem `json:"nodes"`
}

// StatusCheckRollup summarises CI on a commit.
type StatusCheckRollup struct {
	State    string                 `json:"state"` // "SUCCESS", "FAILURE", "PENDING", "ERROR", "EXPECTED"
	Contexts CheckContextConnection `json:"contexts"`
}

// CheckContext is a CheckRun or StatusContext.
type CheckContext struct {
	Typename   string `json:"__typename,omitempty"`
	Name       string `json:"name"`
	Conclusion string `json:"conclusion,omitempty"` // "SUCCESS", "FAILURE", ...
	Status     string `json:"status,omitempty"`     // "QUEUED", "IN_PROGRESS", "COMPLETED"
}

type CheckContextConnection struct {
	Nodes []CheckContext `json:"nodes"`
}

type CommitNode struct {
	Commit Commit `json:"commit"`
}

type CommitConnection struct {
	Nodes []CommitNode `json:"nodes"`
}

// HeadRollup returns the status check rollup of the most recent commit, or
// nil when none was fetched.
func (pr *PullRequest) HeadRollup() *StatusCheckRollup {
	if len(pr.Commits.Nodes) == 0 {
		return nil
	}
	return pr.Commits.Nodes[0].Commit.StatusCheckRollup
}
