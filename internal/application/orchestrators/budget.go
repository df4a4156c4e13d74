package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"cadethq/internal/domain/budget"
)

// BudgetStore defines the interface for budget ledger persistence.
type BudgetStore interface {
	Save(ctx context.Context, e budget.Entry) error
}

// RecordBudgetEntryInput carries input for the orchestrator.
type RecordBudgetEntryInput struct {
	SchoolID    string
	Category    string
	Description string
	AmountCents int64
	Kind        string // allocation, expense
	EnteredBy   string // account ID
}

// RecordBudgetEntryDeps holds dependencies for RecordBudgetEntry.
type RecordBudgetEntryDeps struct {
	BudgetStore BudgetStore
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteRecordBudgetEntry appends a line to a school's budget ledger.
// The ledger is append-only; corrections are new entries, never edits.
// PRE: SchoolID, Category and Kind valid; AmountCents non-negative
// POST: Entry persisted
func ExecuteRecordBudgetEntry(ctx context.Context, input RecordBudgetEntryInput, deps RecordBudgetEntryDeps) (budget.Entry, error) {
	e := budget.Entry{
		ID:          deps.GenerateID(),
		SchoolID:    input.SchoolID,
		Category:    input.Category,
		Description: input.Description,
		AmountCents: input.AmountCents,
		Kind:        input.Kind,
		EnteredBy:   input.EnteredBy,
		EnteredAt:   deps.Now(),
	}

	if err := e.Validate(); err != nil {
		return budget.Entry{}, err
	}

	if err := deps.BudgetStore.Save(ctx, e); err != nil {
		return budget.Entry{}, err
	}

	slog.Info("budget_event", "event", "budget_entry_recorded", "entry_id", e.ID, "school_id", e.SchoolID, "kind", e.Kind, "amount_cents", e.AmountCents)
	return e, nil
}
