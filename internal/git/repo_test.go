package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemote(t *testing.T) {
	tests := []struct {
		remote string
		owner  string
		name   string
	}{
		{"https://github.com/octo/cat.git", "octo", "cat"},
		{"https://github.com/octo/cat", "octo", "cat"},
		{"https://github.com/octo/cat/", "octo", "cat"},
		{"git@github.com:octo/cat.git", "octo", "cat"},
		{"ssh://git@github.com/octo/cat.git", "octo", "cat"},
		{"https://ghe.example.com/org/team.repo.git\n", "org", "team.repo"},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			owner, name, err := ParseRemote(tt.remote)
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.name, name)
		})
	}
}

func TestParseRemoteErrors(t *testing.T) {
	for _, remote := range []string{"", "/local/path", "https://github.com/only", "git@github.com:"} {
		t.Run(remote, func(t *testing.T) {
			_, _, err := ParseRemote(remote)
			assert.Error(t, err)
		})
	}
}
