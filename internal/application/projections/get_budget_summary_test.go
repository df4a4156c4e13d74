package projections

import (
	"context"
	"testing"
	"time"

	"cadethq/internal/domain/budget"
)

// mockBudgetStore implements BudgetStore for testing.
type mockBudgetStore struct {
	entries []budget.Entry
}

func (m *mockBudgetStore) ListBySchool(_ context.Context, schoolID string) ([]budget.Entry, error) {
	var out []budget.Entry
	for _, e := range m.entries {
		if e.SchoolID == schoolID {
			out = append(out, e)
		}
	}
	return out, nil
}

// TestQueryGetBudgetSummary rolls up allocations and expenses by
// category, including an overspent category.
func TestQueryGetBudgetSummary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &mockBudgetStore{entries: []budget.Entry{
		{ID: "1", SchoolID: "school-1", Category: "travel", Kind: budget.KindAllocation, AmountCents: 50000, EnteredAt: now},
		{ID: "2", SchoolID: "school-1", Category: "travel", Kind: budget.KindExpense, AmountCents: 12500, EnteredAt: now},
		{ID: "3", SchoolID: "school-1", Category: "uniforms", Kind: budget.KindAllocation, AmountCents: 20000, EnteredAt: now},
		{ID: "4", SchoolID: "school-1", Category: "uniforms", Kind: budget.KindExpense, AmountCents: 25000, EnteredAt: now},
		{ID: "5", SchoolID: "school-other", Category: "travel", Kind: budget.KindExpense, AmountCents: 99999, EnteredAt: now},
	}}

	result, err := QueryGetBudgetSummary(context.Background(), "school-1", GetBudgetSummaryDeps{BudgetStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(result.Categories))
	}
	// Sorted by name: travel, uniforms.
	travel := result.Categories[0]
	if travel.Category != "travel" || travel.RemainingCents != 37500 {
		t.Errorf("travel = %+v, want remaining 37500", travel)
	}
	uniforms := result.Categories[1]
	if uniforms.RemainingCents != -5000 {
		t.Errorf("uniforms remaining = %d, want -5000 (overspend reported, not prevented)", uniforms.RemainingCents)
	}
	if result.TotalAllocatedCents != 70000 || result.TotalSpentCents != 37500 {
		t.Errorf("totals = %d/%d, want 70000/37500", result.TotalAllocatedCents, result.TotalSpentCents)
	}
}

// TestQueryGetBudgetSummary_Empty returns zeroed totals for a school
// with no ledger.
func TestQueryGetBudgetSummary_Empty(t *testing.T) {
	result, err := QueryGetBudgetSummary(context.Background(), "school-1", GetBudgetSummaryDeps{BudgetStore: &mockBudgetStore{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Categories) != 0 || result.TotalRemainingCents != 0 {
		t.Errorf("expected empty summary, got %+v", result)
	}
}
