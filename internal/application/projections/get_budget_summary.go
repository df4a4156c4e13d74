package projections

import (
	"context"
	"sort"

	"cadethq/internal/domain/budget"
)

// CategorySummary is the rollup for one budget category.
type CategorySummary struct {
	Category       string
	AllocatedCents int64
	SpentCents     int64
	RemainingCents int64
}

// BudgetSummaryResult carries the output of the budget summary
// projection.
type BudgetSummaryResult struct {
	Categories          []CategorySummary
	TotalAllocatedCents int64
	TotalSpentCents     int64
	TotalRemainingCents int64
}

// GetBudgetSummaryDeps holds dependencies for GetBudgetSummary.
type GetBudgetSummaryDeps struct {
	BudgetStore BudgetStore
}

// QueryGetBudgetSummary rolls the school's ledger up by category.
// Remaining can go negative; overspend is reported, not prevented.
// PRE: schoolID is non-empty
// POST: categories sorted by name, totals consistent with the rows
func QueryGetBudgetSummary(ctx context.Context, schoolID string, deps GetBudgetSummaryDeps) (BudgetSummaryResult, error) {
	entries, err := deps.BudgetStore.ListBySchool(ctx, schoolID)
	if err != nil {
		return BudgetSummaryResult{}, err
	}

	byCategory := make(map[string]*CategorySummary)
	for _, e := range entries {
		cs, ok := byCategory[e.Category]
		if !ok {
			cs = &CategorySummary{Category: e.Category}
			byCategory[e.Category] = cs
		}
		switch e.Kind {
		case budget.KindAllocation:
			cs.AllocatedCents += e.AmountCents
		case budget.KindExpense:
			cs.SpentCents += e.AmountCents
		}
	}

	result := BudgetSummaryResult{}
	for _, cs := range byCategory {
		cs.RemainingCents = cs.AllocatedCents - cs.SpentCents
		result.Categories = append(result.Categories, *cs)
		result.TotalAllocatedCents += cs.AllocatedCents
		result.TotalSpentCents += cs.SpentCents
	}
	result.TotalRemainingCents = result.TotalAllocatedCents - result.TotalSpentCents

	sort.Slice(result.Categories, func(i, j int) bool {
		return result.Categories[i].Category < result.Categories[j].Category
	})
	return result, nil
}
