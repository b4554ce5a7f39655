// Package badge derives the short status badges shown next to a pull
// request: merge status, CI status and size/comment stats.
package badge

import (
	"fmt"
	"strings"

	"prdeck/internal/collections"
	"prdeck/internal/model"
)

// Colour tokens. The TUI maps them onto terminal colours.
const (
	ColorSuccess   = "success"
	ColorDanger    = "danger"
	ColorAttention = "attention"
	ColorNeutral   = "neutral"
	ColorDone      = "done"
	ColorPurple    = "purple"
)

// Badge is a labelled status. Reason, when set, explains the text.
type Badge struct {
	Text   string `json:"text"`
	Color  string `json:"color"`
	Reason string `json:"reason,omitempty"`
}

// IsZero reports whether there is nothing to show.
func (b Badge) IsZero() bool { return b.Text == "" }

// Merge describes whether pr can be merged. The zero Badge means the
// mergeable state was not fetched.
func Merge(pr *model.PullRequest) Badge {
	switch {
	case pr.IsDraft:
		return Badge{Text: "Draft PR", Color: ColorNeutral}
	case pr.Merged:
		return Badge{Text: "Merged PR", Color: ColorDone}
	}
	switch pr.Mergeable {
	case "MERGEABLE":
		return Badge{Text: "Mergeable PR", Color: ColorSuccess}
	case "CONFLICTING":
		return Badge{Text: "Merge Conflict", Color: ColorDanger}
	case "UNKNOWN":
		return Badge{Text: "Merge status unknown", Color: ColorAttention}
	}
	return Badge{}
}

func byName(c model.CheckContext) (any, bool) { return c.Name, true }

func byConclusion(c model.CheckContext) (any, bool) {
	return c.Conclusion, c.Conclusion != ""
}

func byStatus(c model.CheckContext) (any, bool) {
	return c.Status, c.Status != ""
}

func names(checks []model.CheckContext) string {
	out := make([]string, len(checks))
	for i, c := range checks {
		out[i] = c.Name
	}
	return strings.Join(out, ", ")
}

// CI summarises the head commit's status check rollup.
func CI(pr *model.PullRequest) Badge {
	rollup := pr.HeadRollup()
	if rollup == nil {
		return Badge{Text: "No CI status", Color: ColorNeutral}
	}
	runs := collections.UniqueBy(rollup.Contexts.Nodes, byName)

	switch rollup.State {
	case "SUCCESS":
		return Badge{Text: "CI passes", Color: ColorSuccess}
	case "FAILURE":
		failed := collections.GroupBy(runs, byConclusion)["FAILURE"]
		text := fmt.Sprintf("%d Failures", len(failed))
		if len(failed) == 1 {
			text = failed[0].Name + " failed"
		}
		return Badge{Text: text, Color: ColorDanger, Reason: names(failed)}
	case "PENDING":
		pending := collections.GroupBy(runs, byStatus)["IN_PROGRESS"]
		return Badge{
			Text:   fmt.Sprintf("%d checks pending", len(pending)),
			Color:  ColorAttention,
			Reason: names(pending),
		}
	case "ERROR":
		return Badge{Text: "CI Error", Color: ColorDanger}
	case "EXPECTED":
		return Badge{Text: "CI Expected", Color: ColorPurple}
	}
	return Badge{Text: "No CI status", Color: ColorNeutral}
}
