package domain

import "time"

// Legado is an append-only audit record written when a Legado-category
// rule is applied. Never updated or deleted.
type Legado struct {
	ID          string
	StudentID   string
	GrantorID   string
	RuleID      string
	Description string
	CreatedAt   time.Time
}
