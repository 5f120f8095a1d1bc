package model

import "time"

// EventType identifies an activity feed entry
type EventType string

const (
	EventCreated             EventType = "created"
	EventTransitionStarted   EventType = "transition-started"
	EventTransitionCompleted EventType = "transition-completed"
	EventTransitionDiscarded EventType = "transition-discarded"
	EventDeleted             EventType = "deleted"
)

// Event is published by the site registry for every lifecycle change
type Event struct {
	Type     EventType  `json:"type"`
	SiteID   string     `json:"siteId"`
	SiteName string     `json:"siteName"`
	Status   SiteStatus `json:"status,omitempty"`
	At       time.Time  `json:"at"`
}
