package model

import (
	"errors"
	"testing"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		role     string
		minimum  string
		expected bool
	}{
		{RoleAdmin, RoleAdmin, true},
		{RoleAdmin, RoleManager, true},
		{RoleAdmin, RolePickup, true},
		{RoleManager, RoleAdmin, false},
		{RoleManager, RoleManager, true},
		{RoleManager, RoleReservation, true},
		{RolePickup, RoleManager, false},
		{RolePickup, RoleReservation, true},
		{RoleReservation, RolePickup, true},
		{RoleReservation, RoleAdmin, false},
		// Unknown roles fail-closed.
		{"unknown", RolePickup, false},
		{RoleAdmin, "unknown", false},
		{"", "", false},
		{"", RolePickup, false},
	}

	for _, tt := range tests {
		got := RoleAtLeast(tt.role, tt.minimum)
		if got != tt.expected {
			t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.minimum, got, tt.expected)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestValidateUserCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"", true},
		{"ABC12", true},
		{"ABC123", false},
		{"abc123", false},
		{"ABC1234", true},
		{"ŠĐČĆŽ1", false},
	}

	for _, tt := range tests {
		err := ValidateUserCode(tt.code)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateUserCode(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
		}
	}
}

func TestAuthorizationErrorRedacted(t *testing.T) {
	err := &AuthorizationError{User: "Marko", Hint: "ABC123"}
	if got := err.Error(); got != "wrong code, you can only use your assigned code: ABC123" {
		t.Errorf("unexpected message %q", got)
	}

	redacted := err.Redacted()
	if redacted.Hint != "" || redacted.User != "Marko" {
		t.Errorf("unexpected redacted error %+v", redacted)
	}
	if got := redacted.Error(); got != "wrong code" {
		t.Errorf("unexpected redacted message %q", got)
	}

	var target *AuthorizationError
	if !errors.As(error(redacted), &target) {
		t.Error("expected redacted error to match *AuthorizationError")
	}
}
