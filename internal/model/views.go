package model

import "time"

// Review lifecycle states produced by the classifier.
const (
	StateDraft            = "Draft"
	StateMerged           = "Merged"
	StateClosed           = "Closed"
	StateApproved         = "Approved"
	StateReviewPending    = "Review Pending"
	StateChangesRequested = "Changes Requested"
	StateUnassigned       = "Unassigned"
)

// Reviewer is an approving reviewer attached to a ReviewState.
type Reviewer struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
}

// ReviewState is the derived review/merge status of a pull request.
type ReviewState struct {
	State     string     `json:"state"`
	Reason    string     `json:"reason"`
	Reviewers []Reviewer `json:"reviewers,omitempty"`
}

type TaskType string

const (
	TaskTypeTask      TaskType = "task"
	TaskTypeMilestone TaskType = "milestone"
)

type TaskStyles struct {
	BackgroundColor string `json:"backgroundColor"`
	ProgressColor   string `json:"progressColor"`
	TextColor       string `json:"textColor"`
}

// GanttTask is one phase of a pull request's lifecycle.
type GanttTask struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Type            TaskType   `json:"type"`
	Start           time.Time  `json:"start"`
	End             time.Time  `json:"end"`
	Progress        int        `json:"progress"` // 0..100
	Styles          TaskStyles `json:"styles"`
	PhaseActivities []string   `json:"phaseActivities"`
}

func (t GanttTask) IsMilestone() bool { return t.Type == TaskTypeMilestone }

// Duration is End - Start.
func (t GanttTask) Duration() time.Duration { return t.End.Sub(t.Start) }
