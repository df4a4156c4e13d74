package school

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength     = 200
	MaxDistrictLength = 200
)

// Domain errors
var (
	ErrEmptyName       = errors.New("school name cannot be empty")
	ErrInvalidTimezone = errors.New("timezone must be a valid IANA zone name")
)

// School represents a participating school and its JROTC program.
// Timezone is the IANA zone used to label competition time slots for
// operators at this school.
type School struct {
	ID       string
	Name     string
	District string
	Timezone string // IANA zone, e.g. "America/Chicago"
}

// Validate checks if the School has valid data.
// PRE: School struct is populated
// POST: Returns nil if valid, error otherwise
func (s *School) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > MaxNameLength {
		return errors.New("school name cannot exceed 200 characters")
	}
	if len(s.District) > MaxDistrictLength {
		return errors.New("district cannot exceed 200 characters")
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return ErrInvalidTimezone
		}
	}
	return nil
}

// Location resolves the school's display timezone, falling back to UTC
// when unset or unknown.
// INVARIANT: School fields are not mutated
func (s *School) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
