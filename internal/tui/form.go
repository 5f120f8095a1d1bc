package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wabisaby/cloudplatform-dashboard/internal/config"
	"github.com/wabisaby/cloudplatform-dashboard/internal/service"
)

type formField int

const (
	formRepo formField = iota
	formName
	formContainer
	formBuildCmd
	formFieldCount
)

// siteForm is the "host new site" form.
type siteForm struct {
	repo      string
	name      string
	container string
	buildCmd  string
	focus     formField
}

func newSiteForm() *siteForm {
	return &siteForm{
		container: config.DefaultContainerImage,
		buildCmd:  service.DefaultBuildCommand(config.DefaultContainerImage),
	}
}

func (a *App) handleFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := a.form
	switch m.Type {
	case tea.KeyEsc:
		a.form = nil
		return a, nil
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % formFieldCount
		return a, nil
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + formFieldCount - 1) % formFieldCount
		return a, nil
	case tea.KeyEnter:
		a.submitForm()
		return a, nil
	}

	switch f.focus {
	case formRepo:
		f.repo = editText(f.repo, m)
	case formName:
		f.name = editText(f.name, m)
	case formContainer:
		if m.Type == tea.KeySpace || m.Type == tea.KeyRight {
			f.container = config.NextContainerImage(f.container)
			f.buildCmd = service.DefaultBuildCommand(f.container)
		}
	case formBuildCmd:
		f.buildCmd = editText(f.buildCmd, m)
	}
	return a, nil
}

// submitForm hosts the site. Missing name or repository leaves the form open
// and changes nothing.
func (a *App) submitForm() {
	f := a.form
	if f.name == "" || f.repo == "" {
		return
	}
	_, err := a.registry.SubmitNewSite(service.NewSite{
		Name:           f.name,
		RepositoryURL:  f.repo,
		ContainerImage: f.container,
		BuildCommand:   f.buildCmd,
	})
	if err != nil {
		a.status = "error: " + err.Error()
		return
	}
	a.form = nil
	a.cursor = 0
	a.refresh()
}

func (a *App) renderForm() string {
	f := a.form
	rows := []struct {
		field formField
		label string
		value string
	}{
		{formRepo, "Repository", f.repo},
		{formName, "Site name ", f.name},
		{formContainer, "Container ", "< " + f.container + " >"},
		{formBuildCmd, "Build cmd ", f.buildCmd},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Host a new site"))
	b.WriteString("\n")
	for _, r := range rows {
		line := fmt.Sprintf("%s  %s", r.label, r.value)
		if r.field == f.focus {
			b.WriteString(focusStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("[enter] Deploy  [tab] Next field  [space] Change container  [esc] Cancel"))
	return formStyle.Render(b.String())
}
