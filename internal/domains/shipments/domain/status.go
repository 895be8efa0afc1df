package domain

import (
	"fmt"
	"strings"
)

// Status is the logistics state of a shipment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in-transit"
	StatusDelivered Status = "delivered"
	StatusDelayed   Status = "delayed"
)

// Statuses lists every shipment status.
var Statuses = []Status{StatusPending, StatusInTransit, StatusDelivered, StatusDelayed}

// ParseStatus rejects anything outside Statuses.
func ParseStatus(raw string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range Statuses {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}
