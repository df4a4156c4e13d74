package cadet

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 200
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

// LET level bounds. LET (Leadership Education and Training) levels run
// 1 through 4, matching the four-year JROTC curriculum.
const (
	MinLetLevel = 1
	MaxLetLevel = 4
)

// ValidStatuses contains all valid status values.
var ValidStatuses = []string{StatusActive, StatusInactive, StatusArchived}

// Domain errors
var (
	ErrEmptyName      = errors.New("cadet name cannot be empty")
	ErrEmptySchoolID  = errors.New("school ID cannot be empty")
	ErrInvalidStatus  = errors.New("status must be one of: active, inactive, archived")
	ErrInvalidLet     = errors.New("LET level must be between 1 and 4")
)

// Cadet holds state for a cadet enrolled in a school's program.
type Cadet struct {
	ID        string
	SchoolID  string
	AccountID string // optional: linked login account
	Name      string
	Rank      string // e.g. "C/SSgt"
	LetLevel  int
	Flight    string // unit subdivision, e.g. "Alpha"
	Status    string
}

// Validate checks if the Cadet has valid data.
// PRE: Cadet struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Cadet) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("cadet name cannot exceed 200 characters")
	}
	if strings.TrimSpace(c.SchoolID) == "" {
		return ErrEmptySchoolID
	}
	if !isValidStatus(c.Status) {
		return ErrInvalidStatus
	}
	if c.LetLevel < MinLetLevel || c.LetLevel > MaxLetLevel {
		return ErrInvalidLet
	}
	return nil
}

// IsArchived returns true if the cadet has been archived.
// INVARIANT: Cadet fields are not mutated
func (c *Cadet) IsArchived() bool {
	return c.Status == StatusArchived
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
