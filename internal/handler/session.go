package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
	"github.com/wabisaby/cloudplatform-dashboard/internal/session"
)

// LoginRequest is the JSON body of a login. Either a ready token, the
// email/password form, or provider "google" may be given.
type LoginRequest struct {
	Token      string `json:"token"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Provider   string `json:"provider"`
	RememberMe *bool  `json:"rememberMe"`
}

// NavigateRequest is the JSON body of a page change
type NavigateRequest struct {
	Page model.Page `json:"page"`
}

// SessionHandler exposes the routing gate. The gate itself comes from the
// request context (see session.Middleware).
type SessionHandler struct {
	now func() time.Time
}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{now: time.Now}
}

// GetSession returns the current page and remember-me flag
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	gate := session.MustFromContext(r.Context())
	SendSuccess(w, gate.State())
}

// Login starts a session
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	gate := session.MustFromContext(r.Context())

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		SendError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := gate.Login(h.resolveToken(req)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, session.ErrEmptyToken) {
			status = http.StatusBadRequest
		}
		SendError(w, err.Error(), status)
		return
	}
	if req.RememberMe != nil && req.Provider != "google" {
		if err := gate.SetRememberMe(*req.RememberMe); err != nil {
			SendError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	SendSuccess(w, gate.State())
}

// Logout ends the session
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	gate := session.MustFromContext(r.Context())
	if err := gate.Logout(); err != nil {
		SendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	SendSuccess(w, gate.State())
}

// Navigate switches the current page without touching the token
func (h *SessionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	gate := session.MustFromContext(r.Context())

	var req NavigateRequest
	if err := decodeJSON(r, &req); err != nil {
		SendError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := gate.Navigate(req.Page); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	SendSuccess(w, gate.State())
}

// RequireDashboard rejects requests unless the gate is on the dashboard page.
// It checks the current page only, not the token: navigating to the dashboard
// opens these routes too. It is not an authentication check.
func RequireDashboard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gate := session.MustFromContext(r.Context())
		if gate.CurrentPage() != model.PageDashboard {
			SendError(w, "login required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *SessionHandler) resolveToken(req LoginRequest) string {
	switch {
	case req.Provider == "google":
		return session.GoogleToken(h.now())
	case req.Token != "":
		return req.Token
	case req.Email != "" && req.Password != "":
		return session.LocalToken(req.Email, req.Password, h.now())
	}
	return ""
}
