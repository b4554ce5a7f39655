// Package gantt turns a pull request's timeline into non-overlapping,
// labelled phases for a horizontal timeline chart.
package gantt

import (
	"fmt"
	"slices"
	"time"

	"prdeck/internal/model"
)

// Phase names.
const (
	PhaseOpened           = "PR Opened"
	PhaseAwaitingReview   = "Awaiting Review"
	PhaseChangesRequested = "Changes Requested"
	PhaseApproved         = "Approved"
	PhaseReviewComment    = "Review Comment"
	PhaseAddressing       = "Addressing Feedback"
	PhaseDiscussion       = "Discussion/Update"
	PhaseMerged           = "Merged"
	PhaseClosedNotMerged  = "Closed (Not Merged)"
)

const (
	minNonMilestoneSpan    = time.Minute
	activityTimestampStyle = "Jan 2 15:04"
)

var styles = map[string]model.TaskStyles{
	PhaseOpened:           {BackgroundColor: "#BDDFFF", ProgressColor: "#64B5F6", TextColor: "#1A237E"},
	PhaseAwaitingReview:   {BackgroundColor: "#FFF9C4", ProgressColor: "#FFEE58", TextColor: "#3E2723"},
	PhaseChangesRequested: {BackgroundColor: "#FFCDD2", ProgressColor: "#E57373", TextColor: "#B71C1C"},
	PhaseApproved:         {BackgroundColor: "#C8E6C9", ProgressColor: "#81C784", TextColor: "#1B5E20"},
	PhaseReviewComment:    {BackgroundColor: "#F5F5F5", ProgressColor: "#E0E0E0", TextColor: "#424242"},
	PhaseAddressing:       {BackgroundColor: "#FFECB3", ProgressColor: "#FFD54F", TextColor: "#424242"},
	PhaseDiscussion:       {BackgroundColor: "#ECEFF1", ProgressColor: "#B0BEC5", TextColor: "#263238"},
	PhaseMerged:           {BackgroundColor: "#D1C4E9", ProgressColor: "#9575CD", TextColor: "#311B92"},
	PhaseClosedNotMerged:  {BackgroundColor: "#CFD8DC", ProgressColor: "#90A4AE", TextColor: "#263238"},
}

// StyleFor returns the colours used for a phase name.
func StyleFor(phase string) model.TaskStyles {
	return styles[phase]
}

// Builder builds Gantt phases. The zero value reads the wall clock and
// formats activity timestamps in UTC.
type Builder struct {
	Now      func() time.Time
	Location *time.Location
}

// Build builds phases with a zero Builder.
func Build(pr *model.PullRequest) []model.GanttTask {
	return (&Builder{}).Build(pr)
}

// phase is what a single event contributes when it starts a phase.
type phase struct {
	name      string
	milestone bool
	idPart    string
}

// Build returns pr's phases sorted by start. The result always holds the
// "PR Opened" task, every task has Start <= End and consecutive
// non-milestone tasks never overlap.
func (b *Builder) Build(pr *model.PullRequest) []model.GanttTask {
	if pr == nil {
		pr = &model.PullRequest{}
	}
	now := time.Now()
	if b.Now != nil {
		now = b.Now()
	}
	w := walk{b: b, pr: pr, now: now, events: normalize(pr)}
	w.run()
	return w.finish()
}

type walk struct {
	b      *Builder
	pr     *model.PullRequest
	now    time.Time
	events []event
	tasks  []model.GanttTask

	lastClosed int // events index of the last ClosedEvent, -1 if none
}

func (w *walk) format(ev event, text string) string {
	loc := w.b.Location
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("[%s] %s: %s", ev.date.In(loc).Format(activityTimestampStyle), loginOr(ev.actor, "System"), text)
}

// terminal is where a phase with no following event ends.
func (w *walk) terminal() time.Time {
	switch {
	case w.pr.MergedAt != nil:
		return *w.pr.MergedAt
	case w.pr.ClosedAt != nil:
		return *w.pr.ClosedAt
	}
	return w.now
}

func (w *walk) endAfter(i int) time.Time {
	if i+1 < len(w.events) {
		return w.events[i+1].date
	}
	return w.terminal()
}

func (w *walk) run() {
	w.lastClosed = -1
	opened := -1
	for i, ev := range w.events {
		switch ev.kind {
		case kindOpened:
			opened = i
		case model.EventClosed:
			w.lastClosed = i
		}
	}

	start := w.pr.CreatedAt
	end := w.endAfter(opened)
	if end.Before(start) {
		end = start
	}
	w.tasks = append(w.tasks, model.GanttTask{
		ID:              w.pr.ID + "-opened",
		Name:            PhaseOpened,
		Type:            model.TaskTypeTask,
		Start:           start,
		End:             end,
		Progress:        100,
		Styles:          styles[PhaseOpened],
		PhaseActivities: []string{w.format(w.events[opened], describe(w.pr, w.events[opened]))},
	})

	for i, ev := range w.events {
		ph, ok := w.phaseOf(i, ev)
		if !ok {
			continue
		}
		w.add(i, ev, ph)
	}
}

// phaseOf decides whether events[i] starts a phase and which one.
func (w *walk) phaseOf(i int, ev event) (phase, bool) {
	id := ev.item.ID
	if id == "" {
		id = fmt.Sprint(ev.index)
	}

	switch ev.kind {
	case model.EventReviewRequested:
		return phase{name: PhaseAwaitingReview, idPart: "reviewrequested-" + id}, true

	case model.EventReview:
		ph := phase{idPart: "review-" + id}
		switch ev.item.State {
		case model.ReviewChangesRequested:
			ph.name = PhaseChangesRequested
		case model.ReviewApproved:
			ph.name = PhaseApproved
		case model.ReviewCommented:
			ph.name = PhaseReviewComment
		default:
			return phase{}, false
		}
		return ph, true

	case model.EventIssueComment:
		ph := phase{name: PhaseDiscussion, idPart: "comment-" + id}
		if last := w.tasks[len(w.tasks)-1]; last.Name == PhaseChangesRequested || last.Name == PhaseReviewComment {
			ph.name = PhaseAddressing
		}
		return ph, true

	case model.EventMerged:
		return phase{name: PhaseMerged, milestone: true, idPart: "merged-" + id}, true

	case model.EventClosed:
		// A merged PR is also closed; and a close followed by a reopen
		// (current state OPEN, or a later close) is not terminal.
		if w.pr.Merged || w.pr.State == model.PRStateOpen || i != w.lastClosed {
			return phase{}, false
		}
		return phase{name: PhaseClosedNotMerged, milestone: true, idPart: "closed-" + id}, true
	}
	return phase{}, false
}

func (w *walk) add(i int, ev event, ph phase) {
	activities := []string{w.format(ev, describe(w.pr, ev))}

	start := ev.date
	end := start
	if !ph.milestone {
		end = w.endAfter(i)
		if end.Before(start) {
			end = start.Add(minNonMilestoneSpan)
		}
		for _, sub := range w.events[i+1:] {
			if !sub.date.Before(end) {
				break
			}
			if text := describeMinor(sub); text != "" {
				activities = append(activities, w.format(sub, text))
			}
		}
	}

	prev := &w.tasks[len(w.tasks)-1]
	if !prev.IsMilestone() && prev.End.After(start) {
		prev.End = start
		if prev.End.Before(prev.Start) {
			prev.End = prev.Start
		}
	}

	if !ph.milestone && !prev.IsMilestone() && prev.Name == ph.name {
		if prev.End.Before(end) {
			prev.End = end
		}
		prev.PhaseActivities = append(prev.PhaseActivities, activities...)
		return
	}

	typ := model.TaskTypeTask
	if ph.milestone {
		typ = model.TaskTypeMilestone
	}
	w.tasks = append(w.tasks, model.GanttTask{
		ID:              w.pr.ID + "-" + ph.idPart,
		Name:            ph.name,
		Type:            typ,
		Start:           start,
		End:             end,
		Progress:        100,
		Styles:          styles[ph.name],
		PhaseActivities: activities,
	})
}

func (w *walk) finish() []model.GanttTask {
	tasks := w.tasks

	if len(tasks) == 1 {
		if end := w.terminal(); !end.Before(tasks[0].Start) {
			tasks[0].End = end
		}
	}

	if w.pr.State == model.PRStateOpen && w.pr.MergedAt == nil && w.pr.ClosedAt == nil {
		for i := len(tasks) - 1; i >= 0; i-- {
			if tasks[i].IsMilestone() {
				continue
			}
			if tasks[i].End.Before(w.now) {
				tasks[i].End = w.now
			}
			break
		}
	}

	tasks = slices.DeleteFunc(tasks, func(t model.GanttTask) bool { return t.Start.After(t.End) })
	tasks = dedupeByID(tasks)
	slices.SortStableFunc(tasks, func(a, b model.GanttTask) int { return a.Start.Compare(b.Start) })

	for i := 0; i+1 < len(tasks); i++ {
		if !tasks[i].IsMilestone() && tasks[i].End.After(tasks[i+1].Start) {
			tasks[i].End = tasks[i+1].Start
		}
	}

	for i := range tasks {
		tasks[i].PhaseActivities = uniqueLines(tasks[i].PhaseActivities)
	}
	return tasks
}

// dedupeByID keeps one task per id, the one ending latest, at the position
// where the id first appeared.
func dedupeByID(tasks []model.GanttTask) []model.GanttTask {
	pos := make(map[string]int, len(tasks))
	out := make([]model.GanttTask, 0, len(tasks))
	for _, t := range tasks {
		if i, ok := pos[t.ID]; ok {
			if out[i].End.Before(t.End) {
				out[i] = t
			}
			continue
		}
		pos[t.ID] = len(out)
		out = append(out, t)
	}
	return out
}

func uniqueLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
