package handler

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
	"github.com/wabisaby/cloudplatform-dashboard/internal/service"
	"github.com/wabisaby/cloudplatform-dashboard/internal/session"
	"github.com/wabisaby/cloudplatform-dashboard/internal/storage"
)

type testEnv struct {
	router   http.Handler
	gate     *session.Gate
	store    *storage.Memory
	registry *service.SiteRegistry
	sched    *service.ManualScheduler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storage.NewMemory()
	gate, err := session.New(store)
	require.NoError(t, err)

	sched := service.NewManualScheduler()
	registry := service.NewSiteRegistry(service.RegistryOptions{Scheduler: sched})
	t.Cleanup(registry.Close)
	_, err = registry.Restore(service.ExampleSite())
	require.NoError(t, err)

	sessions := &SessionHandler{now: func() time.Time { return time.UnixMilli(1700000000000) }}
	sites := NewSiteHandler(registry)

	r := chi.NewRouter()
	r.Use(session.Middleware(gate))
	r.Get("/api/session", sessions.GetSession)
	r.Post("/api/session/login", sessions.Login)
	r.Post("/api/session/logout", sessions.Logout)
	r.Post("/api/session/navigate", sessions.Navigate)
	r.Get("/api/containers", ListContainers)
	r.Get("/api/containers/build-command", BuildCommand)
	r.Route("/api/sites", func(r chi.Router) {
		r.Use(RequireDashboard)
		r.Get("/", sites.ListSites)
		r.Get("/events/stream", sites.StreamEvents)
		r.Post("/", sites.CreateSite)
		r.Get("/{id}", sites.GetSite)
		r.Delete("/{id}", sites.DeleteSite)
		r.Post("/{id}/{action}", sites.HandleSiteAction)
	})

	return &testEnv{router: r, gate: gate, store: store, registry: registry, sched: sched}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, model.Response) {
	t.Helper()
	var rdr *bytes.Reader
	if body == "" {
		rdr = bytes.NewReader(nil)
	} else {
		rdr = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var resp model.Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	require.NoError(t, e.gate.Login("tok"))
}

// decodeData re-decodes the envelope's data field into v.
func decodeData(t *testing.T, resp model.Response, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestSendJSONSetsContentTypeBeforeStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	SendError(rec, "nope", http.StatusTeapot)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"message":"nope"}`, rec.Body.String())
}

func TestSitesRequireDashboard(t *testing.T) {
	e := newTestEnv(t)

	rec, resp := e.do(t, http.MethodGet, "/api/sites", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, resp.Success)

	e.login(t)
	rec, _ = e.do(t, http.MethodGet, "/api/sites", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContainersAreOpen(t *testing.T) {
	e := newTestEnv(t)

	rec, resp := e.do(t, http.MethodGet, "/api/containers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var images []model.ContainerImage
	decodeData(t, resp, &images)
	require.Len(t, images, 6)
	assert.Equal(t, "node:18", images[0].Image)
	assert.True(t, images[0].Default)
	assert.Equal(t, "npm install && npm run build", images[0].BuildCommand)

	rec, resp = e.do(t, http.MethodGet, "/api/containers/build-command?image=python:3.10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var img model.ContainerImage
	decodeData(t, resp, &img)
	assert.Equal(t, "pip install -r requirements.txt && python -m build", img.BuildCommand)

	assert.False(t, img.Custom)

	_, resp = e.do(t, http.MethodGet, "/api/containers/build-command?image=ruby:3", "")
	decodeData(t, resp, &img)
	assert.True(t, img.Custom)
	assert.Equal(t, "npm run build", img.BuildCommand)

	rec, _ = e.do(t, http.MethodGet, "/api/containers/build-command", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSitesFiltersAndCounts(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	_, err := e.registry.Restore(model.Site{Name: "docs", RepositoryURL: "https://github.com/o/docs", Status: model.SiteStopped})
	require.NoError(t, err)

	rec, resp := e.do(t, http.MethodGet, "/api/sites?status=stopped", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list model.SiteList
	decodeData(t, resp, &list)
	require.Len(t, list.Sites, 1)
	assert.Equal(t, "docs", list.Sites[0].Name)
	assert.Equal(t, model.Counts{Total: 2, Running: 1, Stopped: 1}, list.Counts)

	_, resp = e.do(t, http.MethodGet, "/api/sites?q=EXAMPLE", "")
	decodeData(t, resp, &list)
	require.Len(t, list.Sites, 1)
	assert.Equal(t, "example-cloudplatform-app", list.Sites[0].Name)

	rec, _ = e.do(t, http.MethodGet, "/api/sites?status=sleeping", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSiteByNameAndSuggestion(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	rec, resp := e.do(t, http.MethodGet, "/api/sites/example-cloudplatform-app", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var site model.Site
	decodeData(t, resp, &site)
	assert.Equal(t, model.SiteRunning, site.Status)

	rec, resp = e.do(t, http.MethodGet, "/api/sites/example-cloudplatform-ap", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, resp.Message, `did you mean "example-cloudplatform-app"`)
}

func TestCreateSite(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	rec, resp := e.do(t, http.MethodPost, "/api/sites",
		`{"name":"blog","repositoryUrl":"https://github.com/o/blog","containerImage":"python:3.9"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var site model.Site
	decodeData(t, resp, &site)
	assert.Equal(t, model.SiteDeploying, site.Status)
	assert.True(t, site.Busy)
	assert.Equal(t, "pip install -r requirements.txt && python -m build", site.BuildCommand)
	assert.Equal(t, "o/blog", site.RepositorySlug)

	e.sched.Advance(1800 * time.Millisecond)
	got, ok := e.registry.Get(site.ID)
	require.True(t, ok)
	assert.Equal(t, model.SiteRunning, got.Status)
	assert.Equal(t, "https://blog.example.vercel.app", got.HostedURL)
}

func TestCreateSiteKeepsExplicitEmptyBuildCommand(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	_, resp := e.do(t, http.MethodPost, "/api/sites",
		`{"name":"raw","repositoryUrl":"https://github.com/o/raw","buildCommand":""}`)
	var site model.Site
	decodeData(t, resp, &site)
	assert.Equal(t, "node:18", site.ContainerImage)
	assert.Equal(t, "", site.BuildCommand)
}

func TestCreateSiteValidation(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	rec, _ := e.do(t, http.MethodPost, "/api/sites", `{"name":"blog"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/api/sites", `{"name":"blog","bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Len(t, e.registry.List(), 1)
}

func TestSiteActions(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	rec, resp := e.do(t, http.MethodPost, "/api/sites/example-cloudplatform-app/stop", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var site model.Site
	decodeData(t, resp, &site)
	assert.Equal(t, model.SiteDeploying, site.Status)

	rec, resp = e.do(t, http.MethodPost, "/api/sites/example-cloudplatform-app/redeploy", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)

	e.sched.Advance(800 * time.Millisecond)

	rec, _ = e.do(t, http.MethodPost, "/api/sites/example-cloudplatform-app/stop", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/api/sites/example-cloudplatform-app/deploy", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/api/sites/example-cloudplatform-app/explode", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = e.do(t, http.MethodPost, "/api/sites/missing/deploy", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSite(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)

	rec, _ := e.do(t, http.MethodDelete, "/api/sites/example-cloudplatform-app", "")
	assert.Equal(t, http.StatusConflict, rec.Code, "running sites cannot be deleted")

	e.do(t, http.MethodPost, "/api/sites/example-cloudplatform-app/stop", "")
	e.sched.Advance(800 * time.Millisecond)

	rec, _ = e.do(t, http.MethodDelete, "/api/sites/example-cloudplatform-app", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, e.registry.List())
}

func TestSessionLoginLogout(t *testing.T) {
	e := newTestEnv(t)

	rec, resp := e.do(t, http.MethodGet, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var state model.SessionState
	decodeData(t, resp, &state)
	assert.Equal(t, model.PageLogin, state.Page)

	rec, _ = e.do(t, http.MethodPost, "/api/session/login", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.PageLogin, e.gate.CurrentPage())

	rec, resp = e.do(t, http.MethodPost, "/api/session/login",
		`{"email":"a@b.c","password":"pw","rememberMe":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, resp, &state)
	assert.Equal(t, model.PageDashboard, state.Page)
	assert.True(t, state.RememberMe)

	tok, ok, err := e.store.Get(session.TokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.LocalToken("a@b.c", "pw", time.UnixMilli(1700000000000)), tok)

	rec, _ = e.do(t, http.MethodPost, "/api/session/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.PageLogin, e.gate.CurrentPage())
	_, ok, err = e.store.Get(session.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionGoogleLogin(t *testing.T) {
	e := newTestEnv(t)

	rec, _ := e.do(t, http.MethodPost, "/api/session/login", `{"provider":"google"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "google:1700000000000", e.gate.Token())
}

func TestSessionGoogleLoginIgnoresRememberMe(t *testing.T) {
	e := newTestEnv(t)

	rec, _ := e.do(t, http.MethodPost, "/api/session/login", `{"provider":"google","rememberMe":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok, err := e.store.Get(session.RememberMeKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNavigateIsNotAuthentication(t *testing.T) {
	e := newTestEnv(t)

	e.do(t, http.MethodPost, "/api/session/navigate", `{"page":"dashboard"}`)
	rec, _ := e.do(t, http.MethodGet, "/api/sites", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, e.gate.Token())
}

func TestSessionNavigate(t *testing.T) {
	e := newTestEnv(t)

	rec, _ := e.do(t, http.MethodPost, "/api/session/navigate", `{"page":"dashboard"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.PageDashboard, e.gate.CurrentPage())
	assert.Empty(t, e.gate.Token())

	rec, _ = e.do(t, http.MethodPost, "/api/session/navigate", `{"page":"settings"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.PageDashboard, e.gate.CurrentPage())
}

func TestSessionHandlerWithoutGatePanics(t *testing.T) {
	h := NewSessionHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	assert.Panics(t, func() { h.GetSession(httptest.NewRecorder(), req) })
}

func TestStreamEvents(t *testing.T) {
	e := newTestEnv(t)
	e.login(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/sites/events/stream", nil)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))

	lines := bufio.NewScanner(res.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, ": connected", lines.Text())

	site, ok := e.registry.FindByName("example-cloudplatform-app")
	require.True(t, ok)
	_, err = e.registry.RequestStop(site.ID)
	require.NoError(t, err)

	var data string
	for lines.Scan() {
		if strings.HasPrefix(lines.Text(), "data: ") {
			data = strings.TrimPrefix(lines.Text(), "data: ")
			break
		}
	}
	var ev model.Event
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, model.EventTransitionStarted, ev.Type)
	assert.Equal(t, site.ID, ev.SiteID)
}
