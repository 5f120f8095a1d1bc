package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wabisaby/cloudplatform-dashboard/internal/session"
)

type loginField int

const (
	fieldEmail loginField = iota
	fieldPassword
	fieldRemember
	loginFieldCount
)

type loginForm struct {
	email    string
	password string
	remember bool
	focus    loginField
}

func (a *App) handleLoginKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &a.login
	switch m.Type {
	case tea.KeyEsc:
		return a, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % loginFieldCount
		return a, nil
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + loginFieldCount - 1) % loginFieldCount
		return a, nil
	case tea.KeyCtrlG:
		return a, a.submitLogin(session.GoogleToken(a.now()), false)
	case tea.KeyEnter:
		if strings.TrimSpace(f.email) == "" || f.password == "" {
			a.status = "email and password are required"
			return a, nil
		}
		return a, a.submitLogin(session.LocalToken(f.email, f.password, a.now()), true)
	}

	switch f.focus {
	case fieldEmail:
		f.email = editText(f.email, m)
	case fieldPassword:
		f.password = editText(f.password, m)
	case fieldRemember:
		if m.Type == tea.KeySpace || m.String() == "x" {
			f.remember = !f.remember
		}
	}
	return a, nil
}

// submitLogin logs in. The remember-me choice is only persisted for the
// email/password form; the password is dropped from memory either way.
func (a *App) submitLogin(token string, withRemember bool) tea.Cmd {
	if err := a.gate.Login(token); err != nil {
		return func() tea.Msg { return errMsg{err} }
	}
	if withRemember {
		if err := a.gate.SetRememberMe(a.login.remember); err != nil {
			return func() tea.Msg { return errMsg{err} }
		}
	}
	a.login.password = ""
	a.status = ""
	a.refresh()
	return nil
}

func (a *App) renderLogin() string {
	f := a.login
	var b strings.Builder
	b.WriteString(titleStyle.Render("CloudPlatform"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Sign in to manage your sites"))
	b.WriteString("\n\n")

	check := "[ ]"
	if f.remember {
		check = "[x]"
	}
	rows := []struct {
		field loginField
		text  string
	}{
		{fieldEmail, "Email     " + f.email},
		{fieldPassword, "Password  " + strings.Repeat("*", len([]rune(f.password)))},
		{fieldRemember, check + " Remember me"},
	}
	for _, r := range rows {
		if r.field == f.focus {
			b.WriteString(focusStyle.Render("> " + r.text))
		} else {
			b.WriteString("  " + r.text)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("[enter] Sign in  [ctrl+g] Continue with Google  [tab] Next field  [esc] Quit"))
	if a.status != "" {
		b.WriteString("\n" + errorStyle.Render(a.status))
	}
	return b.String()
}
