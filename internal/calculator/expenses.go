// Package calculator computes expense totals, per-person shares and
// balances for a project's bills.
package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/triplan/internal/models"
)

// ExpenseSummary is the aggregate shown above a project's bill list.
type ExpenseSummary struct {
	// Total is the sum of all bill prices.
	Total decimal.Decimal

	// PerPerson is Total divided by Divisor.
	PerPerson decimal.Decimal

	// Divisor is the party size actually used. It is never below 1.
	Divisor int

	BillCount int
}

// SummarizeExpenses sums the bills and divides the total evenly by
// collaboratorCount. A count below 1 is floored to 1 instead of failing.
func SummarizeExpenses(bills []models.Bill, collaboratorCount int) ExpenseSummary {
	total := decimal.Zero
	for _, b := range bills {
		total = total.Add(decimal.NewFromFloat(b.Price))
	}

	divisor := collaboratorCount
	if divisor < 1 {
		divisor = 1
	}

	return ExpenseSummary{
		Total:     total,
		PerPerson: total.Div(decimal.NewFromInt(int64(divisor))),
		Divisor:   divisor,
		BillCount: len(bills),
	}
}

// CollaboratorCount returns the party size used to split expenses.
// The owner is only counted when includeOwner is set.
func CollaboratorCount(project *models.Project, includeOwner bool) int {
	if project == nil {
		return 0
	}
	n := 0
	seen := make(map[string]bool, len(project.Collaborators))
	for _, c := range project.Collaborators {
		if seen[c.ID] || (includeOwner && c.ID == project.OwnerID) {
			continue
		}
		seen[c.ID] = true
		n++
	}
	if includeOwner && project.OwnerID != "" {
		n++
	}
	return n
}
