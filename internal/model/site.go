package model

import "time"

// SiteStatus is the lifecycle status of a hosted site
type SiteStatus string

const (
	SiteStopped   SiteStatus = "stopped"
	SiteRunning   SiteStatus = "running"
	SiteDeploying SiteStatus = "deploying"
)

// Site represents a mock deployment hosted from a repository
type Site struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	RepositoryURL  string     `json:"repositoryUrl"`
	RepositorySlug string     `json:"repositorySlug,omitempty"`
	HostedURL      string     `json:"hostedUrl,omitempty"` // empty while not hosted
	Status         SiteStatus `json:"status"`
	ContainerImage string     `json:"containerImage"`
	BuildCommand   string     `json:"buildCommand"`
	Busy           bool       `json:"busy"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Hosted reports whether the site has a hosted URL.
func (s Site) Hosted() bool {
	return s.HostedURL != ""
}

// StatusFilter restricts a site listing
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterStopped   StatusFilter = "stopped"
	FilterRunning   StatusFilter = "running"
	FilterDeploying StatusFilter = "deploying"
	FilterWithURL   StatusFilter = "with-url"
)

// StatusFilters lists filters in the order the dashboard cycles through them.
func StatusFilters() []StatusFilter {
	return []StatusFilter{FilterAll, FilterRunning, FilterStopped, FilterDeploying, FilterWithURL}
}

// ParseStatusFilter maps a query value to a filter. An empty value means all.
func ParseStatusFilter(v string) (StatusFilter, bool) {
	if v == "" {
		return FilterAll, true
	}
	for _, f := range StatusFilters() {
		if string(f) == v {
			return f, true
		}
	}
	return "", false
}

// Counts summarizes the registry by status
type Counts struct {
	Total     int `json:"total"`
	Running   int `json:"running"`
	Stopped   int `json:"stopped"`
	Deploying int `json:"deploying"`
}
