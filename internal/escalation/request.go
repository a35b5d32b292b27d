// Package escalation owns the human-assistance request lifecycle: creation
// when the router flags a message for a human operator, listing for the
// operator dashboard, and resolution. The store is the single source of truth
// for pending/resolved state; everything else goes through its API.
package escalation

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a request. Transitions only go
// pending → resolved, never back.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// DefaultResolvedBy is recorded when an operator resolves a request
// without identifying themselves.
const DefaultResolvedBy = "operator"

// Request is a single human-assistance request. JSON field names match the
// dashboard API contract; ResolvedAt/ResolvedBy serialize as null while the
// request is pending.
type Request struct {
	ID         string     `json:"id"`
	User       string     `json:"user"`
	UserName   string     `json:"userName"`
	Timestamp  time.Time  `json:"timestamp"`
	Message    string     `json:"message"`
	Status     Status     `json:"status"`
	ResolvedAt *time.Time `json:"resolvedAt"`
	ResolvedBy *string    `json:"resolvedBy"`
}

// displayName derives the display-friendly projection of a channel address:
// the prefix before the domain separator ("5511999999999@c.us" → "5511999999999").
// Addresses without a separator pass through unchanged.
func displayName(user string) string {
	name, _, _ := strings.Cut(user, "@")
	return name
}
