package domain

import (
	"strings"
)

// Status represents the lifecycle state of a product unit.
type Status string

const (
	StatusManufactured   Status = "manufactured"
	StatusQualityCheck   Status = "quality-check"
	StatusInSupply       Status = "in-supply"
	StatusInDistribution Status = "in-distribution"
	StatusDelivered      Status = "delivered"
	StatusDelayed        Status = "delayed"
)

// Statuses lists every lifecycle state in happy-path order, delayed last.
var Statuses = []Status{
	StatusManufactured,
	StatusQualityCheck,
	StatusInSupply,
	StatusInDistribution,
	StatusDelivered,
	StatusDelayed,
}

// ParseStatus maps raw input onto the closed status set.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(raw)))
	if candidate.Valid() {
		return candidate, nil
	}
	return "", ErrUnknownStatus
}

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// InProgress reports whether s may still advance and may be delayed.
func (s Status) InProgress() bool {
	switch s {
	case StatusManufactured, StatusQualityCheck, StatusInSupply, StatusInDistribution:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusDelivered
}

// Humanize renders the status as a timeline title, "in-supply" -> "In Supply".
func (s Status) Humanize() string {
	parts := strings.Split(string(s), "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
