package ledger

import (
	"sort"
	"time"

	"homeledger/internal/models"
)

// BillShareLine is one bill's slice of a member's monthly summary.
type BillShareLine struct {
	BillID    string               `json:"billId"`
	BillName  string               `json:"billName"`
	Category  string               `json:"category"`
	DueDate   time.Time            `json:"dueDate"`
	Share     float64              `json:"share"`
	Paid      float64              `json:"paid"`
	Remaining float64              `json:"remaining"`
	Status    models.PaymentStatus `json:"status"`
}

// MonthlySummary is a member's position for one calendar month.
type MonthlySummary struct {
	MemberID   string          `json:"memberId"`
	Year       int             `json:"year"`
	Month      time.Month      `json:"month"`
	TotalShare float64         `json:"totalShare"`
	AmountPaid float64         `json:"amountPaid"`
	Remaining  float64         `json:"remaining"`
	Bills      []BillShareLine `json:"bills"`
}

// MonthlySummary builds a member's per-bill breakdown for the month the
// bills are due in, sorted by due date. Bills where the member's share
// rounds below tolerance are skipped.
func (e *Engine) MonthlySummary(bills []*models.Bill, members []*models.Member, memberID string, year int, month time.Month) MonthlySummary {
	summary := MonthlySummary{MemberID: memberID, Year: year, Month: month}

	for _, bill := range bills {
		y, m, _ := bill.DueDate.Date()
		if y != year || m != month {
			continue
		}
		line, ok := e.shareLine(bill, members, memberID)
		if !ok {
			continue
		}
		summary.Bills = append(summary.Bills, line)
		summary.TotalShare += line.Share
		summary.AmountPaid += line.Paid
		summary.Remaining += line.Remaining
	}

	sort.Slice(summary.Bills, func(i, j int) bool {
		return summary.Bills[i].DueDate.Before(summary.Bills[j].DueDate)
	})

	summary.TotalShare = round2(summary.TotalShare)
	summary.AmountPaid = round2(summary.AmountPaid)
	summary.Remaining = round2(summary.Remaining)
	return summary
}

// OutstandingBills lists every bill, across all time, where the member
// still owes part of their share, sorted oldest-due-first. This is the
// queue the pay-down distributor consumes.
func (e *Engine) OutstandingBills(bills []*models.Bill, members []*models.Member, memberID string) []BillShareLine {
	var out []BillShareLine
	for _, bill := range bills {
		line, ok := e.shareLine(bill, members, memberID)
		if !ok || line.Remaining <= e.eps {
			continue
		}
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

func (e *Engine) shareLine(bill *models.Bill, members []*models.Member, memberID string) (BillShareLine, bool) {
	share := e.Shares(bill, members)[memberID]
	if round2(share) < e.eps {
		return BillShareLine{}, false
	}
	paid := e.Contributions(bill)[memberID]
	line := BillShareLine{
		BillID:   bill.ID,
		BillName: bill.Name,
		Category: bill.Category,
		DueDate:  bill.DueDate,
		Share:    round2(share),
		Paid:     round2(paid),
		Status:   e.PaymentState(bill).Status,
	}
	if remaining := share - paid; remaining > 0 {
		line.Remaining = round2(remaining)
	}
	return line, true
}

// PaymentAllocation directs part of a lump payment at one bill.
type PaymentAllocation struct {
	BillID string  `json:"billId"`
	Amount float64 `json:"amount"`
}

// DistributePayment allocates a lump payment greedily against
// outstanding bills in the order given (oldest due first, as produced by
// OutstandingBills) until the payment is exhausted or every bill is
// covered.
func (e *Engine) DistributePayment(outstanding []BillShareLine, amount float64) []PaymentAllocation {
	var allocations []PaymentAllocation
	left := amount
	for _, bill := range outstanding {
		if left <= e.eps {
			break
		}
		alloc := bill.Remaining
		if alloc > left {
			alloc = left
		}
		if alloc <= e.eps {
			continue
		}
		allocations = append(allocations, PaymentAllocation{BillID: bill.BillID, Amount: round2(alloc)})
		left -= alloc
	}
	return allocations
}
