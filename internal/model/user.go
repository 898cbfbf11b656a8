package model

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// UserCodeLength is the length of a user's pickup confirmation code.
const UserCodeLength = 6

// MinPasswordLength is the shortest accepted login password.
const MinPasswordLength = 8

// User is a person known to the system. Pickup and reservation users are
// selected by name in the ledgers; admins and managers log in to manage data.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	UserCode     string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// HasCode reports whether the user has a confirmation code assigned.
func (u User) HasCode() bool {
	return u.UserCode != ""
}

// Roles.
const (
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RolePickup      = "pickup"
	RoleReservation = "reservation"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RolePickup, RoleReservation:
		return true
	}
	return false
}

// RoleAtLeast checks if role meets or exceeds the minimum required role.
// Pickup and reservation users share the lowest level.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:       3,
		RoleManager:     2,
		RolePickup:      1,
		RoleReservation: 1,
	}
	have, ok := levels[role]
	need, known := levels[minimum]
	return ok && known && have >= need
}

// ValidatePassword checks a login password against the minimum policy.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// ValidateUserCode checks that a confirmation code has the required length.
func ValidateUserCode(code string) error {
	if utf8.RuneCountInString(code) != UserCodeLength {
		return fmt.Errorf("code must be exactly %d characters", UserCodeLength)
	}
	return nil
}
