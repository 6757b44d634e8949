package ledger

import (
	"homeledger/internal/models"
)

// Contributions computes the amount each member has actually paid toward
// a bill. PaidContributions, when present and non-empty, is the source
// of truth (already inclusive of any credit applied). Otherwise the
// legacy single-payer field means that payer covered the whole bill. An
// unpaid bill yields an empty map.
//
// The returned map is always a fresh copy; callers may mutate it freely.
func (e *Engine) Contributions(bill *models.Bill) map[string]float64 {
	if len(bill.PaidContributions) > 0 {
		out := make(map[string]float64, len(bill.PaidContributions))
		for id, amt := range bill.PaidContributions {
			out[id] = amt
		}
		return out
	}
	if bill.PaidBy != "" {
		return map[string]float64{bill.PaidBy: bill.Total()}
	}
	return map[string]float64{}
}

// PaymentState is a bill's derived payment status and aggregate amounts.
type PaymentState struct {
	Status    models.PaymentStatus `json:"status"`
	TotalPaid float64              `json:"totalPaid"`
	Remaining float64              `json:"remaining"`
	FullyPaid bool                 `json:"fullyPaid"`
}

// PaymentState derives a bill's status from its contributions. Only the
// stored IsPaid flag is trusted; everything else is recomputed on every
// read.
func (e *Engine) PaymentState(bill *models.Bill) PaymentState {
	total := bill.Total()
	totalPaid := sumValues(e.Contributions(bill))

	st := PaymentState{
		TotalPaid: totalPaid,
		FullyPaid: totalPaid >= total-e.eps,
	}
	if remaining := total - totalPaid; remaining > 0 {
		st.Remaining = remaining
	}

	switch {
	case bill.IsPaid:
		st.Status = models.StatusPaid
	case totalPaid > e.eps && !st.FullyPaid:
		st.Status = models.StatusPartial
	case !st.FullyPaid && !sameOrAfterDay(bill.DueDate, e.now()):
		st.Status = models.StatusOverdue
	default:
		st.Status = models.StatusPending
	}
	return st
}

// hasPayment reports whether a bill qualifies for balance aggregation
// and settlement resolution: marked paid with a payer on record, or
// carrying any positive contribution.
func (e *Engine) hasPayment(bill *models.Bill) bool {
	if bill.IsPaid && (bill.PaidBy != "" || len(bill.PaidContributions) > 0) {
		return true
	}
	for _, amt := range bill.PaidContributions {
		if amt > 0 {
			return true
		}
	}
	return false
}
