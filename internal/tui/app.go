// Package tui is the terminal front end: a login screen and the sites
// dashboard, both driven by the routing gate and the site registry.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
	"github.com/wabisaby/cloudplatform-dashboard/internal/service"
	"github.com/wabisaby/cloudplatform-dashboard/internal/session"
)

const refreshInterval = 200 * time.Millisecond

// App is the bubbletea model. The gate decides which screen is shown.
type App struct {
	gate     *session.Gate
	registry *service.SiteRegistry
	now      func() time.Time

	login loginForm

	sites     []model.Site
	counts    model.Counts
	query     string
	filter    model.StatusFilter
	cursor    int
	searching bool
	form      *siteForm

	status string
	width  int
}

type tickMsg time.Time

type errMsg struct{ error }

func New(gate *session.Gate, registry *service.SiteRegistry) *App {
	a := &App{
		gate:     gate,
		registry: registry,
		now:      time.Now,
		filter:   model.FilterAll,
	}
	a.login.remember = gate.RememberMe()
	a.refresh()
	return a
}

func (a *App) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if m.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.gate.CurrentPage() == model.PageLogin {
			return a.handleLoginKey(m)
		}
		if a.form != nil {
			return a.handleFormKey(m)
		}
		return a.handleDashboardKey(m)
	case tea.WindowSizeMsg:
		a.width = m.Width
	case tickMsg:
		a.refresh()
		return a, tick()
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) View() string {
	if a.gate.CurrentPage() == model.PageLogin {
		return a.renderLogin()
	}
	body := a.renderDashboard()
	if a.form != nil {
		body += "\n\n" + a.renderForm()
	}
	return body
}

// refresh re-reads the registry and keeps the cursor in range.
func (a *App) refresh() {
	a.sites = a.registry.Filter(a.query, a.filter)
	a.counts = a.registry.Counts()
	if a.cursor >= len(a.sites) {
		a.cursor = len(a.sites) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *App) selected() (model.Site, bool) {
	if len(a.sites) == 0 {
		return model.Site{}, false
	}
	return a.sites[a.cursor], true
}

// editText applies a key press to a single-line text buffer.
func editText(buf string, m tea.KeyMsg) string {
	switch m.Type {
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(buf) > 0 {
			r := []rune(buf)
			return string(r[:len(r)-1])
		}
	case tea.KeySpace:
		return buf + " "
	case tea.KeyRunes:
		return buf + string(m.Runes)
	}
	return buf
}
