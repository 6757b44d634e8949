package ledger

import (
	"homeledger/internal/models"
)

// Shares computes each member's owed share of a bill under the bill's
// split policy. The result covers every roster member, possibly with a
// zero share. Bills whose split type is missing its required data
// (percentage/custom without CustomSplits) degrade to all-zero shares;
// models.Bill.Validate rejects such bills at creation time.
func (e *Engine) Shares(bill *models.Bill, members []*models.Member) map[string]float64 {
	shares := make(map[string]float64, len(members))
	for _, m := range members {
		shares[m.ID] = 0
	}

	switch bill.SplitType {
	case models.SplitMortgage:
		// Fixed per-member amounts; the bill total is ignored.
		for _, m := range members {
			shares[m.ID] = m.MortgageShare
		}

	case models.SplitEven:
		if len(members) == 0 {
			return shares
		}
		per := bill.Total() / float64(len(members))
		for _, m := range members {
			shares[m.ID] = per
		}

	case models.SplitPercentage:
		for _, m := range members {
			if pct, ok := bill.CustomSplits[m.ID]; ok {
				shares[m.ID] = pct / 100 * bill.Total()
			}
		}

	case models.SplitCustom:
		// Values are absolute amounts, used verbatim.
		for _, m := range members {
			if amt, ok := bill.CustomSplits[m.ID]; ok {
				shares[m.ID] = amt
			}
		}

	case models.SplitItems:
		for _, item := range bill.Items {
			if len(item.AssignedTo) == 0 {
				continue
			}
			per := item.Amount / float64(len(item.AssignedTo))
			for _, id := range item.AssignedTo {
				if _, ok := shares[id]; ok {
					shares[id] += per
				}
			}
		}
	}

	return shares
}
