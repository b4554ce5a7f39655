package forge

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// GraphQLError is one entry of a GraphQL response's errors array.
type GraphQLError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// QueryError is returned when GitHub answers with GraphQL errors.
type QueryError struct {
	Errors []GraphQLError
}

func (e *QueryError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Is makes errors.Is(err, ErrNotFound) hold for NOT_FOUND errors.
func (e *QueryError) Is(target error) bool {
	if target != ErrNotFound {
		return false
	}
	for _, ge := range e.Errors {
		if ge.Type == "NOT_FOUND" {
			return true
		}
	}
	return false
}

// StatusError is a non-2xx HTTP answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return "github: unexpected status " + strconv.Itoa(e.Code) + " " + http.StatusText(e.Code) + ": " + e.Body
}

// IsUnauthorized reports whether err is a 401 from GitHub.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized
}
