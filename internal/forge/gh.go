package forge

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"time"
)

const ghTimeout = 15 * time.Second

// GHTransport runs queries through `gh api graphql`, reusing whatever
// authentication the gh CLI already has.
type GHTransport struct {
	Bin     string // defaults to "gh"
	Timeout time.Duration
}

func (t *GHTransport) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = ghTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bin := t.Bin
	if bin == "" {
		bin = "gh"
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, ghArgs(query, vars)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	// gh prints the response body, errors included, even when it exits
	// non-zero.
	if stdout.Len() > 0 {
		if err := decode(stdout.Bytes(), out); err != nil || runErr == nil {
			return err
		}
	}
	if runErr != nil {
		if msg := trimOutput(stderr.Bytes()); msg != "" {
			return fmt.Errorf("gh api graphql: %s", msg)
		}
		return fmt.Errorf("gh api graphql: %w", runErr)
	}
	return nil
}

// ghArgs encodes variables as -f (string) and -F (typed) fields, in key
// order. Empty strings and nils are left out so they read as null.
func ghArgs(query string, vars map[string]any) []string {
	args := []string{"api", "graphql", "-f", "query=" + query}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := vars[k].(type) {
		case nil:
		case string:
			if v != "" {
				args = append(args, "-f", k+"="+v)
			}
		default:
			args = append(args, "-F", fmt.Sprintf("%s=%v", k, v))
		}
	}
	return args
}
