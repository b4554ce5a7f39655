package git

import (
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// RepoRoot returns the absolute path of the current git repository root.
func RepoRoot() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RemoteURL returns the URL of the named remote of the repo at dir.
func RemoteURL(dir, remote string) (string, error) {
	out, err := exec.Command("git", "-C", dir, "remote", "get-url", remote).Output()
	if err != nil {
		return "", fmt.Errorf("git remote get-url %s: %w", remote, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// OriginRepo resolves owner/name from the origin remote of the repo at dir.
func OriginRepo(dir string) (owner, name string, err error) {
	remote, err := RemoteURL(dir, "origin")
	if err != nil {
		return "", "", err
	}
	return ParseRemote(remote)
}

// ParseRemote extracts owner and repository name from a GitHub remote URL.
// Accepted forms:
//
//	https://github.com/owner/repo(.git)
//	ssh://git@github.com/owner/repo(.git)
//	git@github.com:owner/repo(.git)
func ParseRemote(remote string) (owner, name string, err error) {
	remote = strings.TrimSpace(remote)
	var path string

	switch {
	case strings.Contains(remote, "://"):
		u, perr := url.Parse(remote)
		if perr != nil {
			return "", "", fmt.Errorf("parse remote %q: %w", remote, perr)
		}
		path = u.Path
	case strings.Contains(remote, ":"):
		// scp-like syntax: user@host:path
		_, path, _ = strings.Cut(remote, ":")
	default:
		return "", "", fmt.Errorf("unrecognised remote %q", remote)
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", "", fmt.Errorf("remote %q has no owner/repo path", remote)
	}
	return parts[len(parts)-2], parts[len(parts)-1], nil
}
