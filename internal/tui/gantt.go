package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"prdeck/internal/model"
)

const (
	maxPhaseLabel = 20
	minBarWidth   = 10
	barGlyph      = "█"
	milestoneMark = "◆"
)

// chartRange is the span covered by tasks.
func chartRange(tasks []model.GanttTask) (start time.Time, span time.Duration) {
	if len(tasks) == 0 {
		return time.Time{}, 0
	}
	start, end := tasks[0].Start, tasks[0].End
	for _, t := range tasks[1:] {
		if t.Start.Before(start) {
			start = t.Start
		}
		if t.End.After(end) {
			end = t.End
		}
	}
	return start, end.Sub(start)
}

// barSpan places a task on a track of width cells. Every non-milestone task
// gets at least one cell; milestones occupy exactly one.
func barSpan(t model.GanttTask, origin time.Time, span time.Duration, width int) (offset, length int) {
	if width <= 0 {
		return 0, 0
	}
	if span <= 0 {
		return 0, 1
	}
	cell := func(d time.Duration) int {
		return int(float64(d) / float64(span) * float64(width))
	}

	offset = min(max(cell(t.Start.Sub(origin)), 0), width-1)
	if t.IsMilestone() {
		return offset, 1
	}
	length = max(cell(t.Duration()), 1)
	if offset+length > width {
		length = width - offset
	}
	return offset, length
}

// renderGantt draws one labelled bar per task, coloured with the task's
// progress colour.
func renderGantt(tasks []model.GanttTask, width int) string {
	if len(tasks) == 0 {
		return dimStyle.Render("No phases") + "\n"
	}

	labelW := 0
	for _, t := range tasks {
		labelW = max(labelW, len([]rune(t.Name)))
	}
	labelW = min(labelW, maxPhaseLabel)
	track := max(width-labelW-1, minBarWidth)

	origin, span := chartRange(tasks)

	var b strings.Builder
	for _, t := range tasks {
		offset, length := barSpan(t, origin, span, track)
		glyph := barGlyph
		if t.IsMilestone() {
			glyph = milestoneMark
		}
		bar := lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Styles.ProgressColor)).
			Render(strings.Repeat(glyph, length))

		b.WriteString(fmt.Sprintf("%-*s ", labelW, truncate(t.Name, labelW)))
		b.WriteString(strings.Repeat(" ", offset) + bar)
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%*s %s → %s", labelW, "", origin.Local().Format(feedDateForm), origin.Add(span).Local().Format(feedDateForm))))
	b.WriteString("\n")
	return b.String()
}
