package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/triplan/internal/models"
)

// MemberBalance represents the balance information for one project member.
type MemberBalance struct {
	MemberID   string
	NetBalance decimal.Decimal // Positive = owed money, Negative = owes money
	TotalPaid  decimal.Decimal // Total amount paid across all bills
	TotalOwed  decimal.Decimal // This member's share of all bills
}

// DebtEdge represents a debt from one member to another.
type DebtEdge struct {
	From   string // Member who owes
	To     string // Member who is owed
	Amount decimal.Decimal
}

// CalculateProjectBalances works out who owes whom for a project.
// Every bill is split evenly across members; the member who recorded the
// bill is treated as the payer. Payers outside the member list are still
// credited so their money is not lost from the ledger.
//
// Algorithm:
// - For each bill: payer contributed +price, each member owes an even share
// - Aggregate: net_balance = total_paid - total_owed
// - Debt list: simplified using greedy matching of largest debtor and creditor
func CalculateProjectBalances(bills []models.Bill, members []string) ([]MemberBalance, []DebtEdge, error) {
	balances := make(map[string]*MemberBalance)
	get := func(id string) *MemberBalance {
		if b, ok := balances[id]; ok {
			return b
		}
		b := &MemberBalance{MemberID: id}
		balances[id] = b
		return b
	}
	for _, m := range members {
		get(m)
	}

	for _, bill := range bills {
		// Skip bills without payer (can't attribute the payment)
		if bill.AddedUser.ID == "" {
			continue
		}
		price := decimal.NewFromFloat(bill.Price)
		shares, err := SplitEvenly(price, members)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to split bill %s: %w", bill.ID, err)
		}

		payer := get(bill.AddedUser.ID)
		payer.TotalPaid = payer.TotalPaid.Add(price.Round(2))
		for member, share := range shares {
			owed := get(member)
			owed.TotalOwed = owed.TotalOwed.Add(share)
		}
	}

	ids := make([]string, 0, len(balances))
	for id, bal := range balances {
		bal.NetBalance = bal.TotalPaid.Sub(bal.TotalOwed)
		ids = append(ids, id)
	}
	sort.Strings(ids)

	memberBalances := make([]MemberBalance, 0, len(ids))
	for _, id := range ids {
		memberBalances = append(memberBalances, *balances[id])
	}

	return memberBalances, simplifyDebts(memberBalances), nil
}

// simplifyDebts matches the largest debtor with the largest creditor until
// every balance is settled.
func simplifyDebts(balances []MemberBalance) []DebtEdge {
	var creditors, debtors []MemberBalance
	for _, bal := range balances {
		switch {
		case bal.NetBalance.IsPositive():
			creditors = append(creditors, bal)
		case bal.NetBalance.IsNegative():
			debtors = append(debtors, bal)
		}
	}
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].NetBalance.GreaterThan(creditors[j].NetBalance)
	})
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].NetBalance.LessThan(debtors[j].NetBalance)
	})

	owes := make([]decimal.Decimal, len(debtors))
	for i, d := range debtors {
		owes[i] = d.NetBalance.Neg()
	}
	owed := make([]decimal.Decimal, len(creditors))
	for j, c := range creditors {
		owed[j] = c.NetBalance
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(owes[i], owed[j])
		if amount.GreaterThanOrEqual(cent) {
			edges = append(edges, DebtEdge{
				From:   debtors[i].MemberID,
				To:     creditors[j].MemberID,
				Amount: amount,
			})
		}

		owes[i] = owes[i].Sub(amount)
		owed[j] = owed[j].Sub(amount)

		if owes[i].LessThan(cent) {
			i++
		}
		if owed[j].LessThan(cent) {
			j++
		}
	}
	return edges
}
