// Package timeutil carries the scheduling helpers the UI layer shares:
// business-hours checks, timezone projection and contact validation.
package timeutil

import (
	"fmt"
	"regexp"
	"time"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether s looks like a deliverable address.
// Intentionally loose; the server performs the authoritative check.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// BusinessHours is an inclusive-start, exclusive-end daily window.
type BusinessHours struct {
	StartHour int
	EndHour   int
	// TimeZone, when set, projects the instant before comparing hours.
	TimeZone string
}

// Within reports whether t falls inside the business-hours window.
func (h BusinessHours) Within(t time.Time) (bool, error) {
	if h.TimeZone != "" {
		loc, err := time.LoadLocation(h.TimeZone)
		if err != nil {
			return false, fmt.Errorf("timeutil: load zone %s: %w", h.TimeZone, err)
		}
		t = t.In(loc)
	}
	hour := t.Hour()
	return hour >= h.StartHour && hour < h.EndHour, nil
}

// InZone projects an RFC 3339 instant into the named zone.
func InZone(value, zone string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: parse %q: %w", value, err)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeutil: load zone %s: %w", zone, err)
	}
	return t.In(loc), nil
}
