package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
)

func (a *App) handleDashboardKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		switch m.Type {
		case tea.KeyEnter:
			a.searching = false
		case tea.KeyEsc:
			a.searching = false
			a.query = ""
		default:
			a.query = editText(a.query, m)
		}
		a.refresh()
		return a, nil
	}

	switch m.String() {
	case "q":
		return a, tea.Quit
	case "/":
		a.searching = true
	case "f":
		a.filter = nextFilter(a.filter)
		a.cursor = 0
		a.refresh()
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.sites)-1 {
			a.cursor++
		}
	case "d", "r", "s", "x":
		a.runAction(m.String())
	case "n":
		a.form = newSiteForm()
	case "L":
		if err := a.gate.Logout(); err != nil {
			a.status = "error: " + err.Error()
			return a, nil
		}
		a.status = ""
	}
	return a, nil
}

func nextFilter(f model.StatusFilter) model.StatusFilter {
	filters := model.StatusFilters()
	for i, v := range filters {
		if v == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return model.FilterAll
}

// actionKeys lists the keys that apply to a site; busy sites accept none.
func actionKeys(s model.Site) []string {
	if s.Busy {
		return nil
	}
	switch s.Status {
	case model.SiteStopped:
		return []string{"d", "x"}
	case model.SiteRunning:
		return []string{"r", "s"}
	}
	return nil
}

// runAction applies key to the selected site. Keys that don't apply are ignored.
func (a *App) runAction(key string) {
	selected, ok := a.selected()
	if !ok {
		return
	}
	// the list may be a tick behind the registry
	site, ok := a.registry.Get(selected.ID)
	if !ok {
		a.refresh()
		return
	}
	allowed := false
	for _, k := range actionKeys(site) {
		if k == key {
			allowed = true
		}
	}
	if !allowed {
		return
	}

	var err error
	switch key {
	case "d":
		_, err = a.registry.RequestDeploy(site.ID)
	case "r":
		_, err = a.registry.RequestRedeploy(site.ID)
	case "s":
		_, err = a.registry.RequestStop(site.ID)
	case "x":
		_, err = a.registry.RequestDelete(site.ID)
	}
	if err != nil {
		a.status = "error: " + err.Error()
	}
	a.refresh()
}

var actionLabels = map[string]string{
	"d": "[d] Deploy",
	"r": "[r] Redeploy",
	"s": "[s] Stop",
	"x": "[x] Delete",
}

func (a *App) renderDashboard() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Your Sites"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total %d  %s  %s  %s\n",
		a.counts.Total,
		statusStyle(model.SiteRunning).Render(fmt.Sprintf("Running %d", a.counts.Running)),
		statusStyle(model.SiteStopped).Render(fmt.Sprintf("Stopped %d", a.counts.Stopped)),
		statusStyle(model.SiteDeploying).Render(fmt.Sprintf("Deploying %d", a.counts.Deploying)),
	))

	search := a.query
	if a.searching {
		search += "_"
	}
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Search: %s   Filter: %s", search, a.filter)))
	b.WriteString("\n\n")

	if len(a.sites) == 0 {
		b.WriteString(mutedStyle.Render("No sites match. Press [n] to host a new site."))
		b.WriteString("\n")
	}
	for i, s := range a.sites {
		line := fmt.Sprintf("%-28s %s  %s", s.Name, statusStyle(s.Status).Render(fmt.Sprintf("%-9s", s.Status)), s.ContainerImage)
		if s.Hosted() {
			line += "  " + s.HostedURL
		}
		if i == a.cursor {
			b.WriteString(focusStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if s, ok := a.selected(); ok {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%s  build: %s", s.RepositoryURL, s.BuildCommand)))
		b.WriteString("\n")
		var actions []string
		for _, k := range actionKeys(s) {
			actions = append(actions, actionLabels[k])
		}
		if s.Busy {
			actions = append(actions, "working...")
		}
		b.WriteString(strings.Join(actions, "  "))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("[/] Search  [f] Filter  [j/k] Move  [n] Host new site  [L] Log out  [q] Quit"))
	if a.status != "" {
		b.WriteString("\n" + errorStyle.Render(a.status))
	}
	return b.String()
}
