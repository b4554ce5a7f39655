// Package view assembles everything derived from a pull request into the
// shapes the TUI, the show command and the HTTP API render.
package view

import (
	"prdeck/internal/badge"
	"prdeck/internal/gantt"
	"prdeck/internal/model"
	"prdeck/internal/review"
	"prdeck/internal/timeline"
)

// Row is a pull request as listed.
type Row struct {
	PullRequest *model.PullRequest `json:"pullRequest"`
	ReviewState model.ReviewState  `json:"reviewState"`
	Merge       badge.Badge        `json:"merge"`
	CI          badge.Badge        `json:"ci"`
	Stats       badge.PRStats      `json:"stats"`
}

// Detail is a Row plus its phases and activity feed.
type Detail struct {
	Row
	Gantt    []model.GanttTask `json:"gantt"`
	Timeline timeline.Feed     `json:"timeline"`
}

// Builder derives views. The zero value uses the default classifier and a
// wall-clock Gantt builder.
type Builder struct {
	Classifier *review.Classifier
	Gantt      *gantt.Builder
}

func (b *Builder) classifier() *review.Classifier {
	if b.Classifier == nil {
		return review.New(nil)
	}
	return b.Classifier
}

func (b *Builder) phaseBuilder() *gantt.Builder {
	if b.Gantt == nil {
		return &gantt.Builder{}
	}
	return b.Gantt
}

// Row builds the list view of pr.
func (b *Builder) Row(pr *model.PullRequest) Row {
	return Row{
		PullRequest: pr,
		ReviewState: b.classifier().Classify(pr),
		Merge:       badge.Merge(pr),
		CI:          badge.CI(pr),
		Stats:       badge.Stats(pr),
	}
}

// Rows builds list views for prs.
func (b *Builder) Rows(prs []model.PullRequest) []Row {
	out := make([]Row, len(prs))
	for i := range prs {
		out[i] = b.Row(&prs[i])
	}
	return out
}

// Detail builds the full view of pr.
func (b *Builder) Detail(pr *model.PullRequest) Detail {
	return Detail{
		Row:      b.Row(pr),
		Gantt:    b.phaseBuilder().Build(pr),
		Timeline: timeline.Activities(pr),
	}
}
