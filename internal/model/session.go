package model

// Page is the top-level screen selected by the session gate
type Page string

const (
	PageLogin     Page = "login"
	PageDashboard Page = "dashboard"
)

// Valid reports whether p names a known page.
func (p Page) Valid() bool {
	return p == PageLogin || p == PageDashboard
}

// SessionState is the session as reported to the presentation layer
type SessionState struct {
	Page       Page `json:"page"`
	RememberMe bool `json:"rememberMe"`
}
