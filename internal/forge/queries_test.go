package forge

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"prdeck/internal/model"
)

func loadSchema(t *testing.T) *ast.Schema {
	t.Helper()
	path := filepath.Join("testdata", "schema.graphql")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return gqlparser.MustLoadSchema(&ast.Source{Name: path, Input: string(data)})
}

func TestQueriesValidate(t *testing.T) {
	schema := loadSchema(t)

	for name, q := range map[string]string{
		"search":      searchQuery,
		"cursors":     cursorQuery,
		"pullRequest": pullRequestQuery,
		"viewer":      viewerQuery,
	} {
		t.Run(name, func(t *testing.T) {
			_, errs := gqlparser.LoadQuery(schema, q)
			assert.Empty(t, errs)
		})
	}
}

func TestQueriesRejectConflictingReviewerName(t *testing.T) {
	schema := loadSchema(t)
	q := `
query Conflict($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    pullRequest(number: 1) {
      timelineItems(first: 1) {
        nodes {
          ... on ReviewRequestedEvent {
            requestedReviewer {
              ... on User { login name }
              ... on Team { name }
            }
          }
        }
      }
    }
  }
}
`

	_, errs := gqlparser.LoadQuery(schema, q)

	require.NotEmpty(t, errs)
	assert.Contains(t, errs.Error(), `Fields "name" conflict`)
}

func TestDecodeRequestedUserName(t *testing.T) {
	var r model.RequestedReviewer

	require.NoError(t, json.Unmarshal([]byte(`{"__typename":"User","login":"bob","userName":"Bob Smith"}`), &r))

	assert.Equal(t, model.RequestedReviewer{Typename: "User", Login: "bob", UserName: "Bob Smith"}, r)
}
