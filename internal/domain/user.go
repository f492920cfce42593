package domain

import "time"

// Role differentiates marketplace participants.
type Role string

const (
	RoleUser     Role = "USER"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
)

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for marketplace accounts: shippers, logistics
// providers, and admins.
type User struct {
	ID         string
	Name       string
	Email      string
	Role       Role
	Status     UserStatus
	LastSeenAt *time.Time
	IsOnline   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
