package models

import "time"

// Metric is one sample recorded by the backend for a site
type Metric struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId"`
	SiteID    string    `json:"siteId"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
}

// Event is a lifecycle message recorded by the backend for a site
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"sessionId"`
	SiteID    string    `json:"siteId"`
	Message   string    `json:"message"`
}

// CurrentSite is the most recently started site
type CurrentSite struct {
	URL       string    `json:"url"`
	StartedAt time.Time `json:"startedAt"`
}
