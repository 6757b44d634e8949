package ledger

import (
	"homeledger/internal/models"
)

// Balances folds every paid or partially-paid bill into a per-member net
// balance. Positive means the member owes the household, negative means
// the member is owed. Results are rounded to 2 decimals.
//
// A partially-paid bill creates debt only in proportion to how much of
// it was actually paid: a half-paid bill yields half the proportional
// debt, not debt based on full shares. Payers with no share on a bill
// (e.g. someone paying on behalf of the roster) are owed their payment
// back in full.
func (e *Engine) Balances(bills []*models.Bill, members []*models.Member) map[string]float64 {
	balances := make(map[string]float64, len(members))
	for _, m := range members {
		balances[m.ID] = 0
	}

	for _, bill := range bills {
		if !e.hasPayment(bill) {
			continue
		}

		shares := e.Shares(bill, members)
		contributions := e.Contributions(bill)

		totalShares := sumValues(shares)
		totalPaid := sumValues(contributions)
		// Nothing meaningfully paid, or no shares assigned; skipping
		// also guards the ratio below against division by zero.
		if totalShares < e.eps || totalPaid < e.eps {
			continue
		}

		paidRatio := totalPaid / totalShares
		if paidRatio > 1 {
			paidRatio = 1
		}

		for id, share := range shares {
			balances[id] += share*paidRatio - contributions[id]
		}
		for id, paid := range contributions {
			if _, ok := shares[id]; !ok {
				balances[id] -= paid
			}
		}
	}

	for id, v := range balances {
		balances[id] = round2(v)
	}
	return balances
}
