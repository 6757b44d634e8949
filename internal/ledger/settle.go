package ledger

import (
	"sort"
	"time"

	"homeledger/internal/models"
)

// BillDebt is one bill's contribution to a directed debt between two
// members, kept for auditable breakdowns on emitted settlements.
type BillDebt struct {
	BillID     string    `json:"billId"`
	BillName   string    `json:"billName"`
	Category   string    `json:"category"`
	DueDate    time.Time `json:"dueDate"`
	BillAmount float64   `json:"billAmount"`

	// Amount is what the debtor owes the creditor on this bill.
	Amount float64 `json:"amount"`

	// TheirShare is the debtor's share of this bill.
	TheirShare float64 `json:"theirShare"`
}

// Settlement is a net, directed, bill-attributed debt between two
// members after reciprocal debts and recorded forgiveness/payments are
// netted out.
type Settlement struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`

	// Breakdown lists the bills behind the winning direction of the
	// debt; OffsetBreakdown lists the bills that reduced it from the
	// reverse direction, when any exist.
	Breakdown       []BillDebt `json:"breakdown,omitempty"`
	OffsetBreakdown []BillDebt `json:"offsetBreakdown,omitempty"`

	// GrossOwed is the pre-netting total From owed To. GrossOffset is
	// the pre-netting reverse total, zero when there was none.
	GrossOwed   float64 `json:"grossOwed"`
	GrossOffset float64 `json:"grossOffset,omitempty"`

	// Forgiven is the recorded forgiveness/payment total already
	// subtracted from this debt, zero when below tolerance.
	Forgiven float64 `json:"forgiven,omitempty"`
}

// direction is an ordered debtor→creditor pair.
type direction struct {
	from, to string
}

// ResolveSettlements converts per-bill debtor/creditor relationships
// into settlement instructions, one per ordered pair that still has net
// debt after netting.
//
// Attribution per bill: explicit coverage allocations, when present, are
// authoritative and suppress all inference. Otherwise, only bills paid
// in full generate inferred debt, distributed from each debtor to the
// bill's overpayers in proportion to their overpayment. Partially-paid
// bills without coverage contribute nothing here; only Balances reflects
// them.
//
// Netting: for each unordered pair the two directed totals are reduced
// by the recorded settlement amounts in their direction (forgiven and
// paid reduce equally), then subtracted from each other. Rounding to 2
// decimals happens only at emission.
func (e *Engine) ResolveSettlements(bills []*models.Bill, members []*models.Member, records []*models.SettlementRecord) []Settlement {
	debts := make(map[direction][]BillDebt)

	for _, bill := range bills {
		if !e.hasPayment(bill) {
			continue
		}

		shares := e.Shares(bill, members)

		if len(bill.CoverageAllocations) > 0 {
			for _, ca := range bill.CoverageAllocations {
				if ca.Amount <= e.eps {
					continue
				}
				d := direction{from: ca.CoveredID, to: ca.PayerID}
				debts[d] = append(debts[d], e.billDebt(bill, ca.Amount, shares[ca.CoveredID]))
			}
			continue
		}

		contributions := e.Contributions(bill)
		totalShares := sumValues(shares)
		totalPaid := sumValues(contributions)
		if totalShares < e.eps || totalPaid < totalShares-e.eps {
			continue
		}

		// Net position per member: positive owes, negative overpaid.
		// Money diverted to a payer's own credit balance does not count
		// as covering others.
		nets := make(map[string]float64, len(shares))
		for id, share := range shares {
			nets[id] = share - (contributions[id] - bill.CreditEarned[id])
		}
		for id, paid := range contributions {
			if _, ok := shares[id]; !ok {
				nets[id] = -(paid - bill.CreditEarned[id])
			}
		}

		var debtors, creditors []string
		var totalOver float64
		for id, net := range nets {
			switch {
			case net > e.eps:
				debtors = append(debtors, id)
			case net < -e.eps:
				creditors = append(creditors, id)
				totalOver += -net
			}
		}
		if totalOver <= 0 {
			continue
		}
		sort.Strings(debtors)
		sort.Strings(creditors)

		for _, d := range debtors {
			for _, c := range creditors {
				amount := nets[d] * (-nets[c] / totalOver)
				if amount <= 0 {
					continue
				}
				dir := direction{from: d, to: c}
				debts[dir] = append(debts[dir], e.billDebt(bill, amount, shares[d]))
			}
		}
	}

	forgiven := e.sumRecords(records, members)

	ids := pairUniverse(members, debts, forgiven)

	var settlements []Settlement
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			ab := direction{from: a, to: b}
			ba := direction{from: b, to: a}

			aOwesB := sumDebts(debts[ab])
			bOwesA := sumDebts(debts[ba])
			if aOwesB == 0 && bOwesA == 0 && forgiven[ab] == 0 && forgiven[ba] == 0 {
				continue
			}

			net := (aOwesB - forgiven[ab]) - (bOwesA - forgiven[ba])
			if net > e.eps {
				settlements = append(settlements, e.emit(a, b, net, aOwesB, bOwesA, forgiven[ab], debts[ab], debts[ba]))
			} else if net < -e.eps {
				settlements = append(settlements, e.emit(b, a, -net, bOwesA, aOwesB, forgiven[ba], debts[ba], debts[ab]))
			}
		}
	}
	return settlements
}

func (e *Engine) billDebt(bill *models.Bill, amount, theirShare float64) BillDebt {
	return BillDebt{
		BillID:     bill.ID,
		BillName:   bill.Name,
		Category:   bill.Category,
		DueDate:    bill.DueDate,
		BillAmount: bill.Total(),
		Amount:     amount,
		TheirShare: theirShare,
	}
}

// emit builds one settlement, rounding every currency field now and not
// before.
func (e *Engine) emit(from, to string, net, gross, offset, forgiven float64, breakdown, offsetBreakdown []BillDebt) Settlement {
	s := Settlement{
		From:      from,
		To:        to,
		Amount:    round2(net),
		Breakdown: roundDebts(breakdown),
		GrossOwed: round2(gross),
	}
	if offset > 0 {
		s.GrossOffset = round2(offset)
		s.OffsetBreakdown = roundDebts(offsetBreakdown)
	}
	if forgiven > e.eps {
		s.Forgiven = round2(forgiven)
	}
	return s
}

// sumRecords totals recorded forgiveness/payment per direction. Records
// referencing unknown member ids contribute zero to keep aggregate views
// resilient to partially-migrated data.
func (e *Engine) sumRecords(records []*models.SettlementRecord, members []*models.Member) map[direction]float64 {
	known := make(map[string]bool, len(members))
	for _, m := range members {
		known[m.ID] = true
	}
	out := make(map[direction]float64)
	for _, r := range records {
		if !known[r.FromID] || !known[r.ToID] {
			continue
		}
		out[direction{from: r.FromID, to: r.ToID}] += r.Amount
	}
	return out
}

func sumDebts(debts []BillDebt) float64 {
	var total float64
	for _, d := range debts {
		total += d.Amount
	}
	return total
}

func roundDebts(debts []BillDebt) []BillDebt {
	if len(debts) == 0 {
		return nil
	}
	out := make([]BillDebt, len(debts))
	for i, d := range debts {
		d.Amount = round2(d.Amount)
		d.TheirShare = round2(d.TheirShare)
		out[i] = d
	}
	return out
}

// pairUniverse collects, sorted, every member id that can appear in a
// settlement: the roster plus any off-roster payer that picked up debt
// attribution.
func pairUniverse(members []*models.Member, debts map[direction][]BillDebt, forgiven map[direction]float64) []string {
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		seen[m.ID] = true
	}
	for d := range debts {
		seen[d.from] = true
		seen[d.to] = true
	}
	for d := range forgiven {
		seen[d.from] = true
		seen[d.to] = true
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
