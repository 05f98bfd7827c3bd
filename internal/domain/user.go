package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a platform account holder. Identity is owned by the identity
// subsystem; the ledger only reads users and additively mutates Balance.
type User struct {
	ID         string
	Name       string
	Email      string
	Role       Role
	Balance    decimal.Decimal
	SchoolYear *int
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CanCover checks if the user's balance covers a debit of amount.
func (u *User) CanCover(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}

// Role is a user's position in the school.
type Role string

const (
	RoleStudent Role = "ALUNO"
	RoleTeacher Role = "PROFESSOR"
	RoleAdmin   Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleStudent: true,
	RoleTeacher: true,
	RoleAdmin:   true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanManageRules checks if the role may create, edit or delete rules.
func (r Role) CanManageRules() bool {
	return r == RoleAdmin
}

// CanApproveTransactions checks if the role may approve or reject
// pending transactions.
func (r Role) CanApproveTransactions() bool {
	return r == RoleAdmin || r == RoleTeacher
}
