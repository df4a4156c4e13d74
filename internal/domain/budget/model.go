package budget

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxCategoryLength    = 100
	MaxDescriptionLength = 500
)

// Entry kinds. Allocations add to a category's budget; expenses draw
// it down.
const (
	KindAllocation = "allocation"
	KindExpense    = "expense"
)

// ValidKinds contains all valid entry kinds.
var ValidKinds = []string{KindAllocation, KindExpense}

// Domain errors
var (
	ErrEmptySchoolID  = errors.New("school ID cannot be empty")
	ErrEmptyCategory  = errors.New("budget category cannot be empty")
	ErrInvalidKind    = errors.New("kind must be 'allocation' or 'expense'")
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// Entry is a single budget ledger line. Amounts are in cents to avoid
// floating-point money.
type Entry struct {
	ID          string
	SchoolID    string
	Category    string // e.g. "uniforms", "travel", "competition fees"
	Description string
	AmountCents int64
	Kind        string // allocation, expense
	EnteredBy   string // account ID
	EnteredAt   time.Time
}

// Validate checks if the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.SchoolID) == "" {
		return ErrEmptySchoolID
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(e.Category) > MaxCategoryLength {
		return errors.New("budget category cannot exceed 100 characters")
	}
	if len(e.Description) > MaxDescriptionLength {
		return errors.New("budget description cannot exceed 500 characters")
	}
	if !isValidKind(e.Kind) {
		return ErrInvalidKind
	}
	if e.AmountCents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func isValidKind(kind string) bool {
	for _, k := range ValidKinds {
		if k == kind {
			return true
		}
	}
	return false
}
