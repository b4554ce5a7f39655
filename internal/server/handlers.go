package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"prdeck/internal/auth"
	"prdeck/internal/forge"
	"prdeck/internal/logging"
	"prdeck/internal/search"
	"prdeck/internal/view"
)

const tokenCookie = "token"

// Authenticator validates tokens and exchanges OAuth codes.
type Authenticator interface {
	Validate(ctx context.Context, token string) error
	Exchange(ctx context.Context, code string) (string, error)
}

// Handlers serves the API. NewTransport builds a GitHub transport for a
// token; DefaultToken is used by the read endpoints when the request
// carries no cookie. A Handlers must not be copied after first use.
type Handlers struct {
	Auth         Authenticator
	NewTransport func(token string) forge.Transport
	DefaultToken string
	PageSize     int
	Views        *view.Builder

	services sync.Map // token -> *forge.Service
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}

func errorResp(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"error": map[string]string{"code": code, "message": msg}})
}

func cookieToken(r *http.Request) string {
	c, err := r.Cookie(tokenCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Token exchanges an OAuth code and stores the access token in a cookie.
func (h *Handlers) Token(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Code == "" {
		writeText(w, http.StatusBadRequest, "Missing code parameter")
		return
	}

	token, err := h.Auth.Exchange(r.Context(), payload.Code)
	if err != nil {
		logging.Logger.Warn("Failed to exchange code for access token", "error", err)
		var xe *auth.ExchangeError
		if errors.As(err, &xe) && len(xe.Raw) > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write(xe.Raw)
			return
		}
		writeText(w, http.StatusInternalServerError, "Failed to exchange code for access token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token})
}

// Status reports whether the cookie token is still accepted by GitHub.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	token := cookieToken(r)
	if token == "" {
		writeText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	switch err := h.Auth.Validate(r.Context(), token); {
	case err == nil:
		writeText(w, http.StatusOK, "Authorized")
	case errors.Is(err, auth.ErrUnauthorized):
		writeText(w, http.StatusUnauthorized, "Unauthorized")
	default:
		logging.Logger.Error("Error validating GitHub token", "error", err)
		writeText(w, http.StatusInternalServerError, "Error validating GitHub token")
	}
}

// GraphQL forwards a query to GitHub with the cookie token and returns the
// response data.
func (h *Handlers) GraphQL(w http.ResponseWriter, r *http.Request) {
	token := cookieToken(r)
	if token == "" {
		writeText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var payload struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Query == "" {
		errorResp(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json")
		return
	}

	var data json.RawMessage
	if err := h.NewTransport(token).Query(r.Context(), payload.Query, payload.Variables, &data); err != nil {
		logging.Logger.Error("Error fetching data from GitHub", "error", err)
		writeText(w, http.StatusInternalServerError, "Error fetching data from GitHub")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (h *Handlers) views() *view.Builder {
	if h.Views == nil {
		return &view.Builder{}
	}
	return h.Views
}

func (h *Handlers) client(r *http.Request) (*forge.Service, bool) {
	token := cookieToken(r)
	if token == "" {
		token = h.DefaultToken
	}
	if token == "" {
		return nil, false
	}
	if svc, ok := h.services.Load(token); ok {
		return svc.(*forge.Service), true
	}
	svc, _ := h.services.LoadOrStore(token, forge.NewService(forge.New(h.NewTransport(token))))
	return svc.(*forge.Service), true
}

// pageSize reads the "first" parameter, defaulting to h.PageSize.
func (h *Handlers) pageSize(r *http.Request) (int, bool) {
	s := r.URL.Query().Get("first")
	if s == "" {
		return h.PageSize, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 100 {
		return 0, false
	}
	return n, true
}

type listResponse struct {
	Query        string         `json:"query"`
	IssueCount   int            `json:"issueCount"`
	PageInfo     forge.PageInfo `json:"pageInfo"`
	PullRequests []view.Row     `json:"pullRequests"`
}

// ListPulls searches a repository's pull requests and classifies each.
func (h *Handlers) ListPulls(w http.ResponseWriter, r *http.Request) {
	gh, ok := h.client(r)
	if !ok {
		writeText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	vars := mux.Vars(r)
	q := search.Normalize(r.URL.Query().Get("q"), vars["owner"], vars["repo"])

	first, ok := h.pageSize(r)
	if !ok {
		errorResp(w, http.StatusBadRequest, "BAD_REQUEST", "first must be between 1 and 100")
		return
	}

	page, err := gh.Search(r.Context(), q, first, r.URL.Query().Get("after"))
	if err != nil {
		h.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{
		Query:        q,
		IssueCount:   page.IssueCount,
		PageInfo:     page.PageInfo,
		PullRequests: h.views().Rows(page.PullRequests),
	})
}

type pagesResponse struct {
	Query   string   `json:"query"`
	Cursors []string `json:"cursors"`
}

// ListPages returns the "after" cursor of every page of a search, so a
// client can jump straight to page N.
func (h *Handlers) ListPages(w http.ResponseWriter, r *http.Request) {
	gh, ok := h.client(r)
	if !ok {
		writeText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	vars := mux.Vars(r)
	q := search.Normalize(r.URL.Query().Get("q"), vars["owner"], vars["repo"])

	first, ok := h.pageSize(r)
	if !ok {
		errorResp(w, http.StatusBadRequest, "BAD_REQUEST", "first must be between 1 and 100")
		return
	}

	cursors, err := gh.Cursors(r.Context(), q, first)
	if err != nil {
		h.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pagesResponse{Query: q, Cursors: cursors})
}

// GetPull returns one pull request with its phases and activity feed.
func (h *Handlers) GetPull(w http.ResponseWriter, r *http.Request) {
	gh, ok := h.client(r)
	if !ok {
		writeText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	vars := mux.Vars(r)
	number, err := strconv.Atoi(vars["number"])
	if err != nil {
		errorResp(w, http.StatusBadRequest, "BAD_REQUEST", "invalid pull request number")
		return
	}

	pr, err := gh.PullRequest(r.Context(), vars["owner"], vars["repo"], number)
	if err != nil {
		h.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.views().Detail(pr))
}

// Viewer returns the authenticated user and their recent repositories.
func (h *Handlers) Viewer(w http.ResponseWriter, r *http.Request) {
	gh, ok := h.client(r)
	if !ok {
		writeText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	v, err := gh.Viewer(r.Context())
	if err != nil {
		h.upstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handlers) upstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, forge.ErrNotFound):
		errorResp(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case forge.IsUnauthorized(err):
		errorResp(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	default:
		logging.Logger.Error("GitHub request failed", "error", err)
		errorResp(w, http.StatusBadGateway, "UPSTREAM", err.Error())
	}
}
