package domain

import "time"

// RuleUsageFilter selects the historical transactions counted against a
// rule's period limit: same rule and origin, and, when known, the same
// destination and discipline. Rejected rows never count.
type RuleUsageFilter struct {
	RuleID            string
	OriginUserID      string
	DestinationUserID string
	DisciplineID      string
	Since             time.Time
	Until             time.Time
}

// TransactionFilter selects ledger rows for the read side. System-generated
// companion rows are excluded unless IncludeSystem is set.
type TransactionFilter struct {
	Since         *time.Time
	Until         *time.Time
	IncludeSystem bool
	Limit         int
	Offset        int
}
