package forge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// fakeGitHub answers GraphQL requests with handle's return value.
func fakeGitHub(t *testing.T, handle func(req gqlRequest) (status int, body string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))

		var req gqlRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		status, body := handle(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func client(srv *httptest.Server) *GitHub {
	return New(NewHTTPTransport(srv.URL, "secret", srv.Client()))
}

func TestSearch(t *testing.T) {
	srv := fakeGitHub(t, func(req gqlRequest) (int, string) {
		assert.Contains(t, req.Query, "SearchPullRequests")
		assert.Equal(t, "repo:o/r is:pr", req.Variables["q"])
		assert.Equal(t, float64(2), req.Variables["first"])
		assert.Equal(t, "abc", req.Variables["after"])
		return http.StatusOK, `{"data":{"search":{"issueCount":3,"pageInfo":{"endCursor":"def","hasNextPage":true},
			"nodes":[{"id":"PR_1","number":1,"title":"one","state":"OPEN"},{},{"id":"PR_2","number":2}]}}}`
	})

	page, err := client(srv).Search(context.Background(), "repo:o/r is:pr", 2, "abc")

	require.NoError(t, err)
	assert.Equal(t, 3, page.IssueCount)
	assert.Equal(t, PageInfo{EndCursor: "def", HasNextPage: true}, page.PageInfo)
	require.Len(t, page.PullRequests, 2)
	assert.Equal(t, "one", page.PullRequests[0].Title)
	assert.Equal(t, 2, page.PullRequests[1].Number)
}

func TestSearchOmitsEmptyCursor(t *testing.T) {
	srv := fakeGitHub(t, func(req gqlRequest) (int, string) {
		_, ok := req.Variables["after"]
		assert.False(t, ok)
		return http.StatusOK, `{"data":{"search":{"nodes":[]}}}`
	})

	_, err := client(srv).Search(context.Background(), "q", 10, "")
	require.NoError(t, err)
}

func TestPullRequest(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		srv := fakeGitHub(t, func(req gqlRequest) (int, string) {
			assert.Equal(t, float64(7), req.Variables["number"])
			assert.Equal(t, "octo", req.Variables["owner"])
			return http.StatusOK, `{"data":{"repository":{"pullRequest":{
				"id":"PR_7","number":7,"createdAt":"2024-01-02T10:00:00Z",
				"timelineItems":{"totalCount":1,"nodes":[{"__typename":"PullRequestReview","state":"APPROVED","submittedAt":"2024-01-02T11:00:00Z","author":{"login":"bob"}}]}
			}}}}`
		})

		pr, err := client(srv).PullRequest(context.Background(), "octo", "cat", 7)

		require.NoError(t, err)
		assert.Equal(t, "PR_7", pr.ID)
		require.Len(t, pr.TimelineItems.Nodes, 1)
		assert.Equal(t, "bob", pr.TimelineItems.Nodes[0].Author.Login)
		assert.Equal(t, 11, pr.TimelineItems.Nodes[0].SubmittedAt.Hour())
	})

	t.Run("null pull request", func(t *testing.T) {
		srv := fakeGitHub(t, func(gqlRequest) (int, string) {
			return http.StatusOK, `{"data":{"repository":{"pullRequest":null}}}`
		})

		_, err := client(srv).PullRequest(context.Background(), "octo", "cat", 7)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("graphql not found error", func(t *testing.T) {
		srv := fakeGitHub(t, func(gqlRequest) (int, string) {
			return http.StatusOK, `{"data":{"repository":null},"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a Repository"}]}`
		})

		_, err := client(srv).PullRequest(context.Background(), "octo", "cat", 7)

		assert.ErrorIs(t, err, ErrNotFound)
		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Contains(t, qe.Error(), "Could not resolve")
	})
}

func TestQueryErrorIsNotAlwaysNotFound(t *testing.T) {
	err := &QueryError{Errors: []GraphQLError{{Type: "RATE_LIMITED", Message: "slow down"}}}
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "graphql: slow down", err.Error())
}

func TestUnauthorized(t *testing.T) {
	srv := fakeGitHub(t, func(gqlRequest) (int, string) {
		return http.StatusUnauthorized, `{"message":"Bad credentials"}`
	})

	_, err := client(srv).Viewer(context.Background())

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
}

func TestViewer(t *testing.T) {
	srv := fakeGitHub(t, func(gqlRequest) (int, string) {
		return http.StatusOK, `{"data":{"viewer":{"login":"me","avatarUrl":"a.png","repositories":{"nodes":[{"name":"cat","url":"u","owner":{"login":"octo"}}]}}}}`
	})

	v, err := client(srv).Viewer(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "me", v.Login)
	require.Len(t, v.Repositories.Nodes, 1)
	assert.Equal(t, "octo", v.Repositories.Nodes[0].Owner.Login)
}

func TestRawQuery(t *testing.T) {
	srv := fakeGitHub(t, func(gqlRequest) (int, string) {
		return http.StatusOK, `{"data":{"viewer":{"login":"me"}}}`
	})

	var raw json.RawMessage
	err := NewHTTPTransport(srv.URL, "secret", srv.Client()).Query(context.Background(), "query { viewer { login } }", nil, &raw)

	require.NoError(t, err)
	assert.JSONEq(t, `{"viewer":{"login":"me"}}`, string(raw))
}

func TestServiceDetailsAndCursors(t *testing.T) {
	var calls atomic.Int32
	srv := fakeGitHub(t, func(req gqlRequest) (int, string) {
		calls.Add(1)
		switch {
		case strings.Contains(req.Query, "GetPullRequest"):
			n := int(req.Variables["number"].(float64))
			return http.StatusOK, `{"data":{"repository":{"pullRequest":{"id":"PR","number":` + strconv.Itoa(n) + `}}}}`
		case strings.Contains(req.Query, "SearchCursors"):
			switch req.Variables["after"] {
			case nil:
				return http.StatusOK, `{"data":{"search":{"pageInfo":{"endCursor":"c1","hasNextPage":true}}}}`
			case "c1":
				return http.StatusOK, `{"data":{"search":{"pageInfo":{"endCursor":"c2","hasNextPage":true}}}}`
			default:
				return http.StatusOK, `{"data":{"search":{"pageInfo":{"endCursor":"c3","hasNextPage":false}}}}`
			}
		}
		return http.StatusBadRequest, "unexpected"
	})
	svc := NewService(client(srv))

	prs, err := svc.Details(context.Background(), "o", "r", []int{3, 1, 2})
	require.NoError(t, err)
	require.Len(t, prs, 3)
	assert.Equal(t, 3, prs[0].Number)
	assert.Equal(t, 1, prs[1].Number)
	assert.Equal(t, 2, prs[2].Number)

	cursors, err := svc.Cursors(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "c1", "c2"}, cursors)
	assert.Equal(t, int32(6), calls.Load())
}

func TestServiceDetailsFailure(t *testing.T) {
	srv := fakeGitHub(t, func(gqlRequest) (int, string) {
		return http.StatusOK, `{"data":{"repository":{"pullRequest":null}}}`
	})

	_, err := NewService(client(srv)).Details(context.Background(), "o", "r", []int{1, 2})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGHArgs(t *testing.T) {
	args := ghArgs("query { x }", map[string]any{"q": "repo:o/r", "first": 25, "after": "", "none": nil})

	assert.Equal(t, []string{"api", "graphql", "-f", "query=query { x }", "-F", "first=25", "-f", "q=repo:o/r"}, args)
}

func fakeGH(t *testing.T, script string) *GHTransport {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for gh")
	}
	path := filepath.Join(t.TempDir(), "gh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return &GHTransport{Bin: path}
}

func TestGHTransport(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tr := fakeGH(t, `echo '{"data":{"viewer":{"login":"cli-user"}}}'`)

		v, err := New(tr).Viewer(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "cli-user", v.Login)
	})

	t.Run("graphql errors on failing exit", func(t *testing.T) {
		tr := fakeGH(t, `echo '{"errors":[{"type":"NOT_FOUND","message":"nope"}]}'; exit 1`)

		_, err := New(tr).PullRequest(context.Background(), "o", "r", 1)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cli failure", func(t *testing.T) {
		tr := fakeGH(t, `echo 'gh: not logged in' >&2; exit 4`)

		_, err := New(tr).Viewer(context.Background())

		assert.ErrorContains(t, err, "gh: not logged in")
	})
}

func TestDetect(t *testing.T) {
	tr, err := Detect("https://ghe.example.com/api/", "tok")
	require.NoError(t, err)
	httpT, ok := tr.(*HTTPTransport)
	require.True(t, ok)
	assert.Equal(t, "https://ghe.example.com/api/graphql", httpT.Endpoint)

	t.Setenv("PATH", t.TempDir())
	_, err = Detect("", "")
	assert.ErrorIs(t, err, ErrNoCredentials)
}
