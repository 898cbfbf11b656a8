package inventory

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/erazemk/magacin/internal/model"
)

// Validator authenticates a pickup against the picker's assigned code.
type Validator struct {
	users UserDirectory

	// RevealCode makes a mismatch error carry the picker's assigned code.
	RevealCode bool
}

// NewValidator returns a Validator that resolves pickers in users.
func NewValidator(users UserDirectory, revealCode bool) *Validator {
	return &Validator{users: users, RevealCode: revealCode}
}

// Validate resolves pickedUpBy among the pickup users and checks code
// against their assigned code, ignoring case. It returns the resolved user.
func (v *Validator) Validate(ctx context.Context, pickedUpBy, code string) (*model.User, error) {
	if code != "" && utf8.RuneCountInString(code) != model.UserCodeLength {
		return nil, model.Invalid("confirmation_code", "code must be exactly %d characters", model.UserCodeLength)
	}

	user, err := findUser(ctx, v.users, model.RolePickup, pickedUpBy)
	if err != nil {
		return nil, fmt.Errorf("resolving picker: %w", err)
	}
	if user == nil {
		return nil, model.Invalid("picked_up_by", "must select a user")
	}
	if !user.HasCode() {
		return nil, model.Invalid("picked_up_by", "user has no assigned code")
	}

	if !strings.EqualFold(code, user.UserCode) {
		authErr := &model.AuthorizationError{User: user.Name}
		if v.RevealCode {
			authErr.Hint = user.UserCode
		}
		return nil, authErr
	}
	return user, nil
}
