package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	MaxNameLength       = 100
	MaxEmailLength      = 254
	MaxSearchTermLength = 100
	MaxPitchLength      = 2000
	MaxFirmNameLength   = 200
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateRole checks a user role value.
func ValidateRole(role string) error {
	if role == "" {
		return fmt.Errorf("role cannot be empty")
	}

	validRoles := []string{"INVESTOR", "ENTREPRENEUR"}
	for _, validRole := range validRoles {
		if role == validRole {
			return nil
		}
	}

	return fmt.Errorf("invalid role: %s. Valid roles: %v", role, validRoles)
}

// ValidateRequestStatus checks a connection request decision value.
func ValidateRequestStatus(status string) error {
	if status == "" {
		return fmt.Errorf("status cannot be empty")
	}

	validStatuses := []string{"ACCEPTED", "REJECTED"}
	for _, validStatus := range validStatuses {
		if status == validStatus {
			return nil
		}
	}

	return fmt.Errorf("invalid status: %s. Valid statuses: %v", status, validStatuses)
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("name cannot exceed %d characters", MaxNameLength)
	}

	return nil
}

// ValidateEmail checks a contact address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLength {
		return fmt.Errorf("email cannot exceed %d characters", MaxEmailLength)
	}

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidateSearchTerm checks an optional list filter.
func ValidateSearchTerm(term string) error {
	if len(term) > MaxSearchTermLength {
		return fmt.Errorf("search term cannot exceed %d characters", MaxSearchTermLength)
	}
	return nil
}

// ValidatePositiveID checks that an id is a usable primary key value.
func ValidatePositiveID(id int64, fieldName string) error {
	if id <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	return nil
}
