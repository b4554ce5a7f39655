package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"prdeck/internal/model"
	"prdeck/internal/view"
)

const (
	showTimeFormat = "2006-01-02 15:04"
	showTimeout    = 30 * time.Second
)

// ShowCmd prints pull requests
type ShowCmd struct {
	Numbers []int  `arg:"" name:"number" help:"Pull request numbers"`
	Format  string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the show command
func (s *ShowCmd) Run(cli *CLI) error {
	owner, name, err := cli.repository()
	if err != nil {
		return err
	}
	svc, err := cli.service()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), showTimeout)
	defer cancel()

	prs, err := svc.Details(ctx, owner, name, s.Numbers)
	if err != nil {
		return fmt.Errorf("failed to fetch pull requests from %s/%s: %w", owner, name, err)
	}

	b := &view.Builder{}
	details := make([]view.Detail, len(prs))
	for i, pr := range prs {
		details[i] = b.Detail(pr)
	}
	return s.render(os.Stdout, details)
}

// render prints details; a single pull request is a JSON object, several
// are an array.
func (s *ShowCmd) render(w io.Writer, details []view.Detail) error {
	if s.Format == "json" {
		var v any = details
		if len(details) == 1 {
			v = details[0]
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal pull requests: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}
	for i, d := range details {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderTable(w, d)
	}
	return nil
}

func renderTable(w io.Writer, d view.Detail) {
	pr := d.PullRequest
	fmt.Fprintf(w, "#%d %s\n", pr.Number, pr.Title)
	fmt.Fprintf(w, "%s\n\n", pr.URL)

	fmt.Fprintf(w, "Author:   %s\n", model.LoginOf(pr.Author))
	if logins := model.AssigneeLogins(pr); len(logins) > 0 {
		fmt.Fprintf(w, "Assigned: %s\n", strings.Join(logins, ", "))
	}
	if len(pr.Labels.Nodes) > 0 {
		names := make([]string, len(pr.Labels.Nodes))
		for i, l := range pr.Labels.Nodes {
			names[i] = l.Name
		}
		fmt.Fprintf(w, "Labels:   %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(w, "Review:   %s (%s)\n", d.ReviewState.State, d.ReviewState.Reason)
	if !d.Merge.IsZero() {
		fmt.Fprintf(w, "Merge:    %s\n", d.Merge.Text)
	}
	if !d.CI.IsZero() {
		fmt.Fprintf(w, "CI:       %s\n", d.CI.Text)
	}
	fmt.Fprintf(w, "Diff:     %s\n", d.Stats.Diff.Text)
	if text := d.Stats.CommentsText(); text != "" {
		fmt.Fprintf(w, "Comments: %s\n", text)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Phase                 Start             End               Duration")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for _, t := range d.Gantt {
		fmt.Fprintf(w, "%-21s %-17s %-17s %s\n",
			t.Name,
			t.Start.Local().Format(showTimeFormat),
			t.End.Local().Format(showTimeFormat),
			t.Duration().Round(time.Minute))
		for _, a := range t.PhaseActivities {
			fmt.Fprintf(w, "    %s\n", a)
		}
	}
}
