// Package model defines the launch data types and filter criteria.
package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Launch represents a single rocket launch as served by the SpaceX v3 API.
type Launch struct {
	FlightNumber    int        `json:"flight_number"`
	MissionName     string     `json:"mission_name"`
	LaunchYear      string     `json:"launch_year,omitempty"`
	LaunchDateLocal time.Time  `json:"launch_date_local"`
	Rocket          Rocket     `json:"rocket"`
	Payloads        []Payload  `json:"payloads"`
	LaunchSite      LaunchSite `json:"launch_site"`
	LaunchSuccess   *bool      `json:"launch_success,omitempty"`
	Details         string     `json:"details,omitempty"`
}

// launchDateLayouts are tried in order. Values without a zone are read in
// time.Local.
var launchDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// UnmarshalJSON decodes a launch, accepting full RFC3339, zone-less and
// date-only launch_date_local values. A date that matches none of them
// leaves LaunchDateLocal zero instead of failing the record.
func (l *Launch) UnmarshalJSON(b []byte) error {
	type plain Launch
	aux := struct {
		*plain
		LaunchDateLocal json.RawMessage `json:"launch_date_local"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	l.LaunchDateLocal = parseLaunchDate(aux.LaunchDateLocal)
	return nil
}

// parseLaunchDate reads a raw JSON date value. Null, non-string and
// unparseable values yield the zero time.
func parseLaunchDate(raw json.RawMessage) time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return time.Time{}
	}
	s = strings.TrimSpace(s)
	for _, layout := range launchDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Rocket identifies the vehicle flown on a launch.
type Rocket struct {
	RocketID   string `json:"rocket_id,omitempty"`
	RocketName string `json:"rocket_name"`
	RocketType string `json:"rocket_type,omitempty"`
}

// Payload is one item carried by a launch.
type Payload struct {
	PayloadID   string `json:"payload_id"`
	PayloadType string `json:"payload_type,omitempty"`
	Orbit       string `json:"orbit,omitempty"`
}

// LaunchSite is the pad reference carried by a launch.
type LaunchSite struct {
	SiteID       string `json:"site_id"`
	SiteName     string `json:"site_name,omitempty"`
	SiteNameLong string `json:"site_name_long,omitempty"`
}

// PrimaryPayloadID returns the id of the first payload.
// The second return is false when the launch carries no payloads.
func (l Launch) PrimaryPayloadID() (string, bool) {
	if len(l.Payloads) == 0 {
		return "", false
	}
	return l.Payloads[0].PayloadID, true
}

// LaunchPad is a physical launch location. SiteID is the value launches
// reference in launch_site.site_id.
type LaunchPad struct {
	ID       int      `json:"id"`
	SiteID   string   `json:"site_id"`
	Name     string   `json:"site_name_long"`
	Status   string   `json:"status,omitempty"`
	Location Location `json:"location"`
}

// Location describes where a pad is.
type Location struct {
	Name   string `json:"name,omitempty"`
	Region string `json:"region,omitempty"`
}
