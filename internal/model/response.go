package model

// Response represents a generic API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SiteList is the payload of a filtered site listing
type SiteList struct {
	Sites  []Site `json:"sites"`
	Counts Counts `json:"counts"`
}

// ContainerImage is an entry of the container catalog
type ContainerImage struct {
	Image        string `json:"image"`
	BuildCommand string `json:"buildCommand"`
	Default      bool   `json:"default,omitempty"`
	Custom       bool   `json:"custom,omitempty"` // not in the catalog
}
