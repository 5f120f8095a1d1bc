package service

import (
	"strings"

	"github.com/wabisaby/cloudplatform-dashboard/internal/model"
)

// FilterSites keeps the sites matching both the search query and the status
// filter, preserving order. The query is trimmed and matched case-insensitively
// against name, repository URL and hosted URL.
func FilterSites(sites []model.Site, query string, filter model.StatusFilter) []model.Site {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Site, 0, len(sites))
	for _, s := range sites {
		if matchesStatus(s, filter) && matchesQuery(s, q) {
			out = append(out, s)
		}
	}
	return out
}

func matchesStatus(s model.Site, filter model.StatusFilter) bool {
	switch filter {
	case model.FilterAll, "":
		return true
	case model.FilterWithURL:
		return s.Hosted()
	default:
		return string(s.Status) == string(filter)
	}
}

func matchesQuery(s model.Site, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.RepositoryURL), q) ||
		strings.Contains(strings.ToLower(s.HostedURL), q)
}

// CountSites tallies sites by status.
func CountSites(sites []model.Site) model.Counts {
	c := model.Counts{Total: len(sites)}
	for _, s := range sites {
		switch s.Status {
		case model.SiteRunning:
			c.Running++
		case model.SiteStopped:
			c.Stopped++
		case model.SiteDeploying:
			c.Deploying++
		}
	}
	return c
}
