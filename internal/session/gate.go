// Package session implements the routing gate: the single current-page value
// and the persisted session token that decides between login and dashboard.
package session

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
)

// Keys in the client store.
const (
	TokenKey      = "token"
	RememberMeKey = "remember_me"
)

var (
	ErrEmptyToken  = errors.New("token must not be empty")
	ErrUnknownPage = errors.New("unknown page")
)

// Store is the persistent client store the gate reads and writes.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Gate owns the current page and the session token.
// It is safe for concurrent use.
type Gate struct {
	mu         sync.RWMutex
	store      Store
	page       model.Page
	token      string
	rememberMe bool
}

// New reads the persisted token once and picks the initial page. Later changes
// to the store made by anyone else are not observed.
func New(store Store) (*Gate, error) {
	if store == nil {
		return nil, &IntegrationError{Op: "new"}
	}

	token, _, err := store.Get(TokenKey)
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}
	remember, _, err := store.Get(RememberMeKey)
	if err != nil {
		return nil, fmt.Errorf("read remember-me flag: %w", err)
	}

	g := &Gate{
		store:      store,
		page:       model.PageLogin,
		token:      token,
		rememberMe: remember == "1",
	}
	if token != "" {
		g.page = model.PageDashboard
	}
	return g, nil
}

// CurrentPage returns the active page.
func (g *Gate) CurrentPage() model.Page {
	if g == nil {
		panic(&IntegrationError{Op: "current page"})
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.page
}

// State returns the session as shown to the presentation layer.
func (g *Gate) State() model.SessionState {
	if g == nil {
		panic(&IntegrationError{Op: "state"})
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return model.SessionState{Page: g.page, RememberMe: g.rememberMe}
}

// Token returns the token set at startup or by the last login.
func (g *Gate) Token() string {
	if g == nil {
		return ""
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

// RememberMe reports the persisted remember-me flag.
func (g *Gate) RememberMe() bool {
	if g == nil {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rememberMe
}

// Login persists token and switches to the dashboard. An empty token changes nothing.
func (g *Gate) Login(token string) error {
	if g == nil {
		return &IntegrationError{Op: "login"}
	}
	if token == "" {
		return ErrEmptyToken
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Set(TokenKey, token); err != nil {
		return fmt.Errorf("persist session token: %w", err)
	}
	g.token = token
	g.page = model.PageDashboard
	log.Printf("Session started")
	return nil
}

// Logout clears the persisted token and returns to the login page.
func (g *Gate) Logout() error {
	if g == nil {
		return &IntegrationError{Op: "logout"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Delete(TokenKey); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	g.token = ""
	g.page = model.PageLogin
	log.Printf("Session ended")
	return nil
}

// Navigate switches pages without touching the token.
func (g *Gate) Navigate(page model.Page) error {
	if g == nil {
		return &IntegrationError{Op: "navigate"}
	}
	if !page.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPage, page)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.page = page
	return nil
}

// SetRememberMe persists the login form's remember-me checkbox.
func (g *Gate) SetRememberMe(remember bool) error {
	if g == nil {
		return &IntegrationError{Op: "remember me"}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	var err error
	if remember {
		err = g.store.Set(RememberMeKey, "1")
	} else {
		err = g.store.Delete(RememberMeKey)
	}
	if err != nil {
		return fmt.Errorf("persist remember-me flag: %w", err)
	}
	g.rememberMe = remember
	return nil
}
