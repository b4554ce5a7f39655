package review

import "strings"

// Bots is a case-insensitive set of automation logins that never count as
// human reviewers or human activity.
type Bots map[string]struct{}

// DefaultBots are the logins excluded unless the caller supplies its own set.
var DefaultBots = NewBots(
	"codecov",
	"codecov[bot]",
	"dependabot",
	"dependabot[bot]",
	"github-actions",
	"github-actions[bot]",
	"opensearch-changeset-bot[bot]",
)

// NewBots builds a set from logins.
func NewBots(logins ...string) Bots {
	b := make(Bots, len(logins))
	for _, l := range logins {
		b[strings.ToLower(l)] = struct{}{}
	}
	return b
}

// Contains reports whether login is a bot.
func (b Bots) Contains(login string) bool {
	_, ok := b[strings.ToLower(login)]
	return ok
}

// With returns a copy of b extended with logins.
func (b Bots) With(logins ...string) Bots {
	out := make(Bots, len(b)+len(logins))
	for k := range b {
		out[k] = struct{}{}
	}
	for _, l := range logins {
		out[strings.ToLower(l)] = struct{}{}
	}
	return out
}
