package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prdeck/internal/gantt"
	"prdeck/internal/model"
	"prdeck/internal/review"
)

func TestDetail(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	now := created.Add(48 * time.Hour)
	pr := &model.PullRequest{
		ID:        "PR_1",
		Number:    1,
		State:     model.PRStateOpen,
		IsDraft:   true,
		Author:    &model.Actor{Login: "alice"},
		CreatedAt: created,
		TimelineItems: model.TimelineConnection{TotalCount: 1, Nodes: []model.TimelineItem{
			{Typename: model.EventIssueComment, CreatedAt: created.Add(time.Hour), UpdatedAt: created.Add(time.Hour), BodyText: "hi", Author: &model.Actor{Login: "renovate"}},
		}},
	}

	b := &Builder{
		Classifier: review.New(review.DefaultBots.With("renovate")),
		Gantt:      &gantt.Builder{Now: func() time.Time { return now }},
	}
	d := b.Detail(pr)

	assert.Equal(t, model.StateDraft, d.ReviewState.State)
	assert.Equal(t, "Draft PR", d.Merge.Text)
	assert.Equal(t, "No CI status", d.CI.Text)
	require.Len(t, d.Gantt, 2)
	assert.Equal(t, now, d.Gantt[1].End)
	require.Len(t, d.Timeline.Activities, 1)
	assert.Equal(t, "hi", d.Timeline.Activities[0].Message)
}

func TestRows(t *testing.T) {
	prs := []model.PullRequest{
		{Number: 1, Merged: true},
		{Number: 2, State: model.PRStateClosed},
	}

	rows := (&Builder{}).Rows(prs)

	require.Len(t, rows, 2)
	assert.Same(t, &prs[0], rows[0].PullRequest)
	assert.Equal(t, model.StateMerged, rows[0].ReviewState.State)
	assert.Equal(t, model.StateClosed, rows[1].ReviewState.State)
}
