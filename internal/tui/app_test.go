package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
	"github.com/wabisaby/cloudplatform-dashboard/internal/service"
	"github.com/wabisaby/cloudplatform-dashboard/internal/session"
	"github.com/wabisaby/cloudplatform-dashboard/internal/storage"
)

var fixedNow = time.UnixMilli(1700000000000)

func newTestApp(t *testing.T) (*App, *storage.Memory, *service.ManualScheduler) {
	t.Helper()
	store := storage.NewMemory()
	gate, err := session.New(store)
	require.NoError(t, err)

	sched := service.NewManualScheduler()
	registry := service.NewSiteRegistry(service.RegistryOptions{Scheduler: sched})
	t.Cleanup(registry.Close)
	_, err = registry.Restore(service.ExampleSite())
	require.NoError(t, err)

	a := New(gate, registry)
	a.now = func() time.Time { return fixedNow }
	return a, store, sched
}

func loggedIn(t *testing.T) (*App, *service.ManualScheduler) {
	t.Helper()
	a, _, sched := newTestApp(t)
	require.NoError(t, a.gate.Login("tok"))
	a.refresh()
	return a, sched
}

func press(a *App, keys ...tea.KeyMsg) {
	for _, k := range keys {
		a.Update(k)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typed(s string) []tea.KeyMsg {
	var keys []tea.KeyMsg
	for _, r := range s {
		if r == ' ' {
			keys = append(keys, tea.KeyMsg{Type: tea.KeySpace})
			continue
		}
		keys = append(keys, runes(string(r)))
	}
	return keys
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	space = tea.KeyMsg{Type: tea.KeySpace}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestLoginSubmitMovesToDashboard(t *testing.T) {
	a, store, _ := newTestApp(t)
	assert.Contains(t, a.View(), "Sign in")

	press(a, typed("ada@example.com")...)
	press(a, tab)
	press(a, typed("pw")...)
	press(a, tab, space)
	press(a, enter)

	assert.Equal(t, model.PageDashboard, a.gate.CurrentPage())
	tok, ok, err := store.Get(session.TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.LocalToken("ada@example.com", "pw", fixedNow), tok)
	v, ok, err := store.Get(session.RememberMeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", v)
	assert.Empty(t, a.login.password)
	assert.Contains(t, a.View(), "example-cloudplatform-app")
}

func TestLoginRequiresCredentials(t *testing.T) {
	a, _, _ := newTestApp(t)

	press(a, enter)
	assert.Equal(t, model.PageLogin, a.gate.CurrentPage())
	assert.Contains(t, a.View(), "email and password are required")
}

func TestGoogleLogin(t *testing.T) {
	a, _, _ := newTestApp(t)

	press(a, tea.KeyMsg{Type: tea.KeyCtrlG})
	assert.Equal(t, model.PageDashboard, a.gate.CurrentPage())
	assert.Equal(t, "google:1700000000000", a.gate.Token())
}

func TestGoogleLoginLeavesRememberMe(t *testing.T) {
	a, store, _ := newTestApp(t)
	require.NoError(t, store.Set(session.RememberMeKey, "1"))
	a.login.remember = false

	press(a, tea.KeyMsg{Type: tea.KeyCtrlG})
	require.Equal(t, model.PageDashboard, a.gate.CurrentPage())
	v, ok, err := store.Get(session.RememberMeKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestActionUsesCurrentRegistryState(t *testing.T) {
	a, sched := loggedIn(t)
	press(a, runes("s"))
	sched.Advance(800 * time.Millisecond)
	require.True(t, a.sites[0].Busy, "list is still a tick behind")

	press(a, runes("d"))
	s, ok := a.registry.Get(a.sites[0].ID)
	require.True(t, ok)
	assert.Equal(t, model.SiteDeploying, s.Status)
	assert.True(t, s.Busy)
}

func TestLogoutReturnsToLogin(t *testing.T) {
	a, _ := loggedIn(t)

	press(a, runes("L"))
	assert.Equal(t, model.PageLogin, a.gate.CurrentPage())
	assert.Empty(t, a.gate.Token())
}

func TestQuit(t *testing.T) {
	a, _ := loggedIn(t)
	_, cmd := a.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestStopThenDeleteSite(t *testing.T) {
	a, sched := loggedIn(t)

	press(a, runes("x"))
	require.Len(t, a.sites, 1, "running sites ignore delete")

	press(a, runes("s"))
	require.Equal(t, model.SiteDeploying, a.sites[0].Status)
	assert.True(t, a.sites[0].Busy)

	press(a, runes("r"))
	sched.Advance(800 * time.Millisecond)
	a.Update(tickMsg(fixedNow))
	require.Equal(t, model.SiteStopped, a.sites[0].Status)
	assert.Contains(t, a.View(), "[d] Deploy")

	press(a, runes("x"))
	assert.Empty(t, a.sites)
	assert.Equal(t, 0, a.counts.Total)
}

func TestDeployStoppedSite(t *testing.T) {
	a, sched := loggedIn(t)
	press(a, runes("s"))
	sched.Advance(800 * time.Millisecond)

	press(a, runes("d"))
	assert.Equal(t, model.SiteDeploying, a.sites[0].Status)
	sched.Advance(1400 * time.Millisecond)
	a.refresh()
	assert.Equal(t, model.SiteRunning, a.sites[0].Status)
	assert.Equal(t, "https://example-cloudplatform-app.example.vercel.app", a.sites[0].HostedURL)
}

func TestFilterCycle(t *testing.T) {
	a, _ := loggedIn(t)

	press(a, runes("f"))
	assert.Equal(t, model.FilterRunning, a.filter)
	assert.Len(t, a.sites, 1)

	press(a, runes("f"))
	assert.Equal(t, model.FilterStopped, a.filter)
	assert.Empty(t, a.sites)

	press(a, runes("f"), runes("f"), runes("f"))
	assert.Equal(t, model.FilterAll, a.filter)
}

func TestSearch(t *testing.T) {
	a, _ := loggedIn(t)

	press(a, runes("/"))
	press(a, typed("nothing")...)
	assert.Empty(t, a.sites)
	press(a, enter)
	assert.False(t, a.searching)
	assert.Equal(t, "nothing", a.query)

	press(a, runes("/"), esc)
	assert.Empty(t, a.query)
	assert.Len(t, a.sites, 1)
}

func TestNewSiteForm(t *testing.T) {
	a, sched := loggedIn(t)

	press(a, runes("n"))
	require.NotNil(t, a.form)
	press(a, typed("https://github.com/o/blog")...)
	press(a, tab)
	press(a, typed("blog")...)
	press(a, tab, space)
	assert.Equal(t, "node:16", a.form.container)
	press(a, space)
	assert.Equal(t, "python:3.10", a.form.container)
	assert.Equal(t, service.DefaultBuildCommand("python:3.10"), a.form.buildCmd)
	press(a, enter)

	assert.Nil(t, a.form)
	require.Len(t, a.sites, 2)
	assert.Equal(t, "blog", a.sites[0].Name)
	assert.Equal(t, model.SiteDeploying, a.sites[0].Status)

	sched.Advance(1800 * time.Millisecond)
	a.refresh()
	assert.Equal(t, model.SiteRunning, a.sites[0].Status)
	assert.Equal(t, "https://blog.example.vercel.app", a.sites[0].HostedURL)
}

func TestNewSiteFormIgnoresMissingFields(t *testing.T) {
	a, _ := loggedIn(t)

	press(a, runes("n"))
	press(a, typed("https://github.com/o/blog")...)
	press(a, enter)
	assert.NotNil(t, a.form)
	assert.Len(t, a.sites, 1)
	assert.Empty(t, a.status)

	press(a, esc)
	assert.Nil(t, a.form)
}

func TestNextFilterUnknownRestarts(t *testing.T) {
	assert.Equal(t, model.FilterAll, nextFilter("bogus"))
	assert.Equal(t, model.FilterAll, nextFilter(model.FilterWithURL))
}
