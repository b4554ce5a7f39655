package tui

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"prdeck/internal/forge"
	"prdeck/internal/logging"
	"prdeck/internal/model"
	"prdeck/internal/search"
	"prdeck/internal/view"
)

// ── state ───────────────────────────────────────────────────────────────────

type appState int

const (
	stateNormal appState = iota
	stateSearch
)

const fetchTimeout = 30 * time.Second

// ── messages ────────────────────────────────────────────────────────────────

// pageLoadedMsg carries the generation of the fetch that produced it; a
// reload bumps the model's generation so pages still in flight are dropped.
type pageLoadedMsg struct {
	gen   int
	query string
	after string
	page  *forge.SearchPage
	err   error
}

type detailLoadedMsg struct {
	number int
	detail *view.Detail
	err    error
}

// ── list item ───────────────────────────────────────────────────────────────

type prItem struct {
	row view.Row
}

func (i prItem) Title() string {
	return fmt.Sprintf("#%d %s", i.row.PullRequest.Number, i.row.PullRequest.Title)
}

func (i prItem) Description() string {
	pr := i.row.PullRequest
	s := stateStyle(i.row.ReviewState.State).Render(i.row.ReviewState.State) +
		dimStyle.Render("  "+model.LoginOf(pr.Author))
	if logins := model.AssigneeLogins(pr); len(logins) > 0 {
		s += dimStyle.Render(" | Assigned: " + strings.Join(logins, ", "))
	}
	if len(pr.Labels.Nodes) > 0 {
		s += "  " + renderLabels(pr.Labels.Nodes)
	}
	return s
}

func (i prItem) FilterValue() string { return i.row.PullRequest.Title }

// ── model ───────────────────────────────────────────────────────────────────

// Options configures the dashboard.
type Options struct {
	Service  *forge.Service
	Views    *view.Builder
	Owner    string
	Repo     string
	PageSize int
	// Query is the initial search; blank means the repository's open PRs.
	Query string
}

type Model struct {
	svc      *forge.Service
	views    *view.Builder
	owner    string
	repo     string
	pageSize int

	list     list.Model
	rows     []view.Row
	query    string
	gen      int
	pageInfo forge.PageInfo
	total    int

	details    map[int]*view.Detail
	detailErr  error
	detailPane viewport.Model

	width       int
	height      int
	loading     bool
	loadingMore bool
	err         error

	state       appState
	searchInput textinput.Model
	spinner     spinner.Model
}

func New(opts Options) Model {
	delegate := list.NewDefaultDelegate()

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Pull Requests"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	ti := textinput.New()
	ti.Placeholder = "repo:owner/name is:pr is:open author:octocat"
	ti.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = warnStyle

	views := opts.Views
	if views == nil {
		views = &view.Builder{}
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}

	return Model{
		svc:         opts.Service,
		views:       views,
		owner:       opts.Owner,
		repo:        opts.Repo,
		pageSize:    pageSize,
		list:        l,
		query:       search.Normalize(opts.Query, opts.Owner, opts.Repo),
		details:     make(map[int]*view.Detail),
		detailPane:  viewport.New(0, 0),
		loading:     true,
		searchInput: ti,
		spinner:     sp,
	}
}

// Query is the search currently shown.
func (m Model) Query() string { return m.query }

// ── commands ────────────────────────────────────────────────────────────────

func (m Model) fetchPage(after string) tea.Cmd {
	svc, query, first, gen := m.svc, m.query, m.pageSize, m.gen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		page, err := svc.Search(ctx, query, first, after)
		return pageLoadedMsg{gen: gen, query: query, after: after, page: page, err: err}
	}
}

func (m Model) fetchDetail(number int) tea.Cmd {
	svc, views, owner, repo := m.svc, m.views, m.owner, m.repo
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		pr, err := svc.PullRequest(ctx, owner, repo, number)
		if err != nil {
			return detailLoadedMsg{number: number, err: err}
		}
		d := views.Detail(pr)
		return detailLoadedMsg{number: number, detail: &d}
	}
}

func openURLCmd(url string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", url)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.Command("xdg-open", url)
		}
		if err := cmd.Run(); err != nil {
			logging.Logger.Warn("Failed to open browser", "url", url, "error", err)
		}
		return nil
	}
}

// reload drops everything fetched for the current query and starts over.
func (m Model) reload() (Model, tea.Cmd) {
	m.gen++
	m.loading = true
	m.loadingMore = false
	m.err = nil
	m.detailErr = nil
	m.details = make(map[int]*view.Detail)
	logging.Logger.Debug("Reloading pull requests", "query", m.query)
	return m, tea.Batch(m.fetchPage(""), m.spinner.Tick)
}

func (m *Model) buildItems() {
	items := make([]list.Item, len(m.rows))
	for i, r := range m.rows {
		items[i] = prItem{row: r}
	}
	m.list.SetItems(items)
}

// ensureDetail fetches the selected PR's detail unless it is cached.
func (m *Model) ensureDetail() tea.Cmd {
	row := m.selectedRow()
	if row == nil || m.svc == nil {
		return nil
	}
	if _, ok := m.details[row.PullRequest.Number]; ok {
		m.refreshDetailPane()
		return nil
	}
	m.detailErr = nil
	m.refreshDetailPane()
	return tea.Batch(m.fetchDetail(row.PullRequest.Number), m.spinner.Tick)
}

// ── tea.Model ───────────────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	if m.svc == nil {
		return nil
	}
	return tea.Batch(m.fetchPage(""), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		lw, lh := m.listDimensions()
		m.list.SetSize(lw, lh)
		dw, dh := m.detailDimensions()
		m.detailPane.Width = dw
		m.detailPane.Height = dh
		m.refreshDetailPane()
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.loadingMore && !m.detailLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshDetailPane()
		return m, cmd

	case pageLoadedMsg:
		if msg.gen != m.gen || msg.query != m.query {
			logging.Logger.Debug("Dropping stale page", "query", msg.query, "after", msg.after)
			return m, nil
		}
		m.loading = false
		m.loadingMore = false
		if msg.err != nil {
			logging.Logger.Error("Search failed", "query", msg.query, "error", msg.err)
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		if msg.after == "" {
			m.rows = nil
			m.list.ResetSelected()
		}
		m.rows = append(m.rows, m.views.Rows(msg.page.PullRequests)...)
		m.pageInfo = msg.page.PageInfo
		m.total = msg.page.IssueCount
		m.buildItems()
		cmd := m.ensureDetail()
		return m, cmd

	case detailLoadedMsg:
		if msg.err != nil {
			logging.Logger.Error("Fetching pull request failed", "number", msg.number, "error", msg.err)
			if row := m.selectedRow(); row != nil && row.PullRequest.Number == msg.number {
				m.detailErr = msg.err
			}
		} else {
			m.details[msg.number] = msg.detail
		}
		m.refreshDetailPane()
		return m, nil
	}

	switch m.state {
	case stateSearch:
		return m.updateSearch(msg)
	default:
		return m.updateNormal(msg)
	}
}

func (m Model) updateNormal(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m.reload()
		case "/":
			m.state = stateSearch
			m.searchInput.SetValue(m.query)
			m.searchInput.CursorEnd()
			m.searchInput.Focus()
			return m, textinput.Blink
		case "a":
			row := m.selectedRow()
			if row == nil {
				return m, nil
			}
			login := model.LoginOf(row.PullRequest.Author)
			if login == "" {
				return m, nil
			}
			m.query = search.Add(m.query, "author", login, -1)
			return m.reload()
		case "l", "L":
			row := m.selectedRow()
			if row == nil || len(row.PullRequest.Labels.Nodes) == 0 {
				return m, nil
			}
			key := "label"
			if msg.String() == "L" {
				key = "-label"
			}
			values := labelValues(row.PullRequest.Labels.Nodes)
			m.query = search.Add(m.query, key, nextLabel(values, search.Get(m.query, key)), -1)
			return m.reload()
		case "x":
			m.query = search.Default(m.owner, m.repo)
			return m.reload()
		case "n":
			if m.loading || m.loadingMore || !m.pageInfo.HasNextPage {
				return m, nil
			}
			m.loadingMore = true
			return m, tea.Batch(m.fetchPage(m.pageInfo.EndCursor), m.spinner.Tick)
		case "o":
			row := m.selectedRow()
			if row != nil && row.PullRequest.URL != "" {
				return m, openURLCmd(row.PullRequest.URL)
			}
			return m, nil
		case "ctrl+d":
			m.detailPane.SetYOffset(m.detailPane.YOffset + m.detailPane.Height/2)
			return m, nil
		case "ctrl+u":
			m.detailPane.SetYOffset(m.detailPane.YOffset - m.detailPane.Height/2)
			return m, nil
		}
	}

	before := m.list.Index()
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if m.list.Index() != before {
		m.detailPane.GotoTop()
		detailCmd := m.ensureDetail()
		return m, tea.Batch(cmd, detailCmd)
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			m.state = stateNormal
			m.searchInput.Blur()
			return m, nil
		case "enter":
			m.state = stateNormal
			m.searchInput.Blur()
			m.query = search.Normalize(m.searchInput.Value(), m.owner, m.repo)
			return m.reload()
		}
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			m.spinner.View() + " Loading pull requests for " + m.query,
		)
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			fmt.Sprintf("Error: %v\n\nPress r to retry, / to edit the search, q to quit.", m.err),
		)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.list.View(), m.renderDetailPane())
	return lipgloss.JoinVertical(lipgloss.Left, m.renderSearchBar(), body, m.renderHelp())
}

// ── label filters ───────────────────────────────────────────────────────────

// labelValues turns label names into search values, quoting names with
// spaces.
func labelValues(labels []model.Label) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		v := l.Name
		if strings.ContainsAny(v, " \t") {
			v = strconv.Quote(v)
		}
		out = append(out, v)
	}
	return out
}

// nextLabel is the value after current, wrapping around; the first value
// when current is not among them. Repeated presses cycle through a pull
// request's labels.
func nextLabel(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// ── layout helpers ──────────────────────────────────────────────────────────

func (m Model) listDimensions() (width, height int) {
	return m.width / 3, m.height - 4
}

// detailDimensions is the inner text area of the detail pane.
func (m Model) detailDimensions() (width, height int) {
	lw, lh := m.listDimensions()
	return max(m.width-lw-1-3-2, 10), max(lh, 1)
}

func (m Model) selectedRow() *view.Row {
	if len(m.rows) == 0 {
		return nil
	}
	idx := m.list.Index()
	if idx < 0 || idx >= len(m.rows) {
		return nil
	}
	return &m.rows[idx]
}

func (m Model) detailLoading() bool {
	row := m.selectedRow()
	if row == nil || m.detailErr != nil {
		return false
	}
	_, ok := m.details[row.PullRequest.Number]
	return !ok
}

func (m *Model) refreshDetailPane() {
	w, _ := m.detailDimensions()
	m.detailPane.SetContent(m.renderDetail(w))
}

func (m Model) renderSearchBar() string {
	if m.state == stateSearch {
		return labelStyle.Render("Search ") + m.searchInput.View()
	}
	count := fmt.Sprintf("%d of %d", len(m.rows), m.total)
	if m.loadingMore {
		count = m.spinner.View() + " " + count
	}
	return labelStyle.Render("Search ") + m.query + dimStyle.Render("   "+count)
}

func (m Model) renderDetailPane() string {
	lw, lh := m.listDimensions()
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		PaddingLeft(3).
		PaddingRight(2).
		Width(m.width - lw - 1).
		Height(lh).
		MaxHeight(lh)
	return style.Render(m.detailPane.View())
}

func (m Model) renderHelp() string {
	var text string
	switch m.state {
	case stateSearch:
		text = "Enter search   Esc cancel"
	default:
		text = "↑/↓ navigate   / search   a author   l/L label/not label   x clear   n more   o open   ctrl+d/u scroll   r refresh   q quit"
	}
	sep := dimStyle.Render(strings.Repeat("─", m.width))
	return sep + "\n" + helpStyle.Render(text)
}
