package incident

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxDescriptionLength = 2000
)

// Severity constants
const (
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeverityMajor    = "major"
)

// ValidSeverities contains all valid severity values.
var ValidSeverities = []string{SeverityMinor, SeverityModerate, SeverityMajor}

// Domain errors
var (
	ErrEmptyCadetID     = errors.New("cadet ID cannot be empty")
	ErrEmptySchoolID    = errors.New("school ID cannot be empty")
	ErrEmptyCategory    = errors.New("incident category cannot be empty")
	ErrInvalidSeverity  = errors.New("severity must be one of: minor, moderate, major")
	ErrMissingReportOn  = errors.New("reported_at must be set")
)

// Incident records a disciplinary or safety incident involving a cadet.
type Incident struct {
	ID          string
	SchoolID    string
	CadetID     string
	Category    string // e.g. "uniform", "conduct", "safety"
	Severity    string
	Description string
	ReportedBy  string // account ID
	ReportedAt  time.Time
}

// Validate checks if the Incident has valid data.
// PRE: Incident struct is populated
// POST: Returns nil if valid, error otherwise
func (i *Incident) Validate() error {
	if strings.TrimSpace(i.CadetID) == "" {
		return ErrEmptyCadetID
	}
	if strings.TrimSpace(i.SchoolID) == "" {
		return ErrEmptySchoolID
	}
	if strings.TrimSpace(i.Category) == "" {
		return ErrEmptyCategory
	}
	if !isValidSeverity(i.Severity) {
		return ErrInvalidSeverity
	}
	if len(i.Description) > MaxDescriptionLength {
		return errors.New("incident description cannot exceed 2000 characters")
	}
	if i.ReportedAt.IsZero() {
		return ErrMissingReportOn
	}
	return nil
}

func isValidSeverity(severity string) bool {
	for _, s := range ValidSeverities {
		if s == severity {
			return true
		}
	}
	return false
}
