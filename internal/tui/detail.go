package tui

import (
	"fmt"
	"strings"

	"prdeck/internal/badge"
	"prdeck/internal/model"
	"prdeck/internal/timeline"
	"prdeck/internal/view"
)

const (
	labelWidth   = 9
	feedLimit    = 12
	feedDateForm = "Jan 2 15:04"
)

func row(lbl, val string) string {
	return labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, lbl)) + val + "\n"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func (m Model) renderDetail(width int) string {
	r := m.selectedRow()
	if r == nil {
		return dimStyle.Render("No pull requests match " + m.query)
	}
	pr := r.PullRequest
	sep := dimStyle.Render(strings.Repeat("─", width))

	var b strings.Builder
	b.WriteString(detailHeadStyle.Render(truncate(fmt.Sprintf("#%d %s", pr.Number, pr.Title), width)) + "\n\n")
	b.WriteString(renderSummary(*r, width))
	b.WriteString("\n" + sep + "\n\n")

	d, ok := m.details[pr.Number]
	switch {
	case m.detailErr != nil:
		b.WriteString(errStyle.Render("Error: "+m.detailErr.Error()) + "\n")
	case !ok:
		b.WriteString(m.spinner.View() + dimStyle.Render(" Loading timeline…") + "\n")
	default:
		b.WriteString(renderPhases(d, width))
		b.WriteString("\n" + sep + "\n\n")
		b.WriteString(renderFeed(d.Timeline, width))
	}
	return b.String()
}

// renderSummary is the part of the detail pane known from the list query.
func renderSummary(r view.Row, width int) string {
	pr := r.PullRequest
	var b strings.Builder

	b.WriteString(row("Author", model.LoginOf(pr.Author)))
	if logins := model.AssigneeLogins(pr); len(logins) > 0 {
		b.WriteString(row("Assigned", truncate(strings.Join(logins, ", "), width-labelWidth)))
	}
	if len(pr.Labels.Nodes) > 0 {
		b.WriteString(row("Labels", renderLabels(pr.Labels.Nodes)))
	}
	b.WriteString(row("Review", stateStyle(r.ReviewState.State).Render(r.ReviewState.State)))
	if r.ReviewState.Reason != "" {
		b.WriteString(row("", dimStyle.Render(truncate(r.ReviewState.Reason, width-labelWidth))))
	}
	if !r.Merge.IsZero() {
		b.WriteString(row("Merge", renderBadge(r.Merge)))
	}
	if !r.CI.IsZero() {
		b.WriteString(row("CI", renderBadge(r.CI)))
	}
	b.WriteString(row("Diff", renderBadge(r.Stats.Diff)))
	if text := r.Stats.CommentsText(); text != "" {
		b.WriteString(row("Comments", badgeStyle(r.Stats.CommentsColor).Render(truncate(text, width-labelWidth))))
	}
	return b.String()
}

func renderLabels(labels []model.Label) string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = githubLabelStyle(l.Color).Render(l.Name)
	}
	return strings.Join(out, " ")
}

func renderBadge(bd badge.Badge) string {
	s := badgeStyle(bd.Color).Render(bd.Text)
	if bd.Reason != "" {
		s += dimStyle.Render("  " + bd.Reason)
	}
	return s
}

func renderPhases(d *view.Detail, width int) string {
	var b strings.Builder
	b.WriteString(detailHeadStyle.Render("Phases") + "\n\n")
	b.WriteString(renderGantt(d.Gantt, width))
	return b.String()
}

// renderFeed lists the most recent activities, newest last.
func renderFeed(feed timeline.Feed, width int) string {
	var b strings.Builder
	head := "Activity"
	if feed.TotalEvents > len(feed.Activities) {
		head = fmt.Sprintf("Activity (%d of %d events)", len(feed.Activities), feed.TotalEvents)
	}
	b.WriteString(detailHeadStyle.Render(head) + "\n\n")

	acts := feed.Activities
	if len(acts) > feedLimit {
		acts = acts[len(acts)-feedLimit:]
	}
	if len(acts) == 0 {
		b.WriteString(dimStyle.Render("No activity") + "\n")
	}
	for _, a := range acts {
		who := model.LoginOf(a.Author)
		if who == "" {
			who = "-"
		}
		date := ""
		if !a.Date.IsZero() {
			date = a.Date.Local().Format(feedDateForm)
		}
		prefix := fmt.Sprintf("%-12s %-14s ", date, truncate(who, 14))
		msg := strings.Join(strings.Fields(a.Message), " ")
		b.WriteString(dimStyle.Render(prefix) + truncate(msg, width-len([]rune(prefix))) + "\n")
	}
	return b.String()
}
