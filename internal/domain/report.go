package domain

import "time"

// Report lifecycle status. Reports enter the system pending; advancement is
// handled by downstream responders, not this service.
const StatusPending = "pending"

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Media describes a downloaded webhook attachment stored on local disk.
type Media struct {
	Filename    string `json:"filename"`
	Filepath    string `json:"filepath"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
	URL         string `json:"url"`
}

// Report is a structured hazard report derived from one inbound message.
// ID and CreatedAt are assigned by the store; Media is attached at most once
// after creation when a download succeeds. All other fields are immutable.
type Report struct {
	ID          string       `json:"id"`
	CreatedAt   time.Time    `json:"createdAt"`
	PhoneNumber string       `json:"phoneNumber"`
	Message     string       `json:"message"`
	HazardType  string       `json:"hazardType"`
	Urgency     string       `json:"urgency"`
	Location    string       `json:"location"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	MessageSID  string       `json:"messageSid"`
	Source      string       `json:"source"`
	Status      string       `json:"status"`
	HasMedia    bool         `json:"hasMedia"`
	Media       *Media       `json:"media,omitempty"`
}
