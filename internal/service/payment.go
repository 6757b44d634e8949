package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"homeledger/internal/ledger"
	"homeledger/internal/metrics"
	"homeledger/internal/models"
)

// PaymentRequest records one member paying toward one bill.
type PaymentRequest struct {
	BillID   string `json:"billId"`
	MemberID string `json:"memberId"`

	// Amount is cash paid now.
	Amount float64 `json:"amount"`

	// UseCredit applies this much of the member's own credit balance on
	// top of Amount. Clamped to the member's available credit.
	UseCredit float64 `json:"useCredit,omitempty"`

	// CoveredIDs optionally earmarks this payment's surplus for specific
	// members' shortfalls, producing coverage allocations. When set, the
	// resulting allocations override proportional inference for this
	// bill at settlement time.
	CoveredIDs []string `json:"coveredIds,omitempty"`
}

// PaymentResult reports what RecordPayment did.
type PaymentResult struct {
	Bill         *models.Bill                `json:"bill"`
	State        ledger.PaymentState         `json:"state"`
	CreditUsed   float64                     `json:"creditUsed"`
	CreditEarned float64                     `json:"creditEarned"`
	Allocations  []models.CoverageAllocation `json:"allocations,omitempty"`
}

// RecordPayment is the payment-recording collaborator: it computes and
// persists paidContributions, contributionDates, creditUsed,
// creditEarned, coverageAllocations and isPaid consistently, so the
// engine can trust those fields as given.
//
// Overpayment beyond the bill's remaining total is not treated as
// covering anyone; it becomes the payer's personal credit, usable only
// against their own future bills.
func (s *HouseholdService) RecordPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if req.Amount < 0 || req.UseCredit < 0 {
		return nil, fmt.Errorf("%w: payment amounts cannot be negative", ErrValidation)
	}
	if req.Amount == 0 && req.UseCredit == 0 {
		return nil, fmt.Errorf("%w: payment must be positive", ErrValidation)
	}
	for _, coveredID := range req.CoveredIDs {
		if coveredID == req.MemberID {
			return nil, fmt.Errorf("%w: cannot cover oneself", ErrValidation)
		}
	}

	bill, err := s.store.GetBill(ctx, req.BillID)
	if err != nil {
		return nil, err
	}
	member, err := s.store.GetMember(ctx, req.MemberID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown payer %s", ErrValidation, req.MemberID)
	}

	useCredit := req.UseCredit
	if useCredit > member.Credit {
		useCredit = member.Credit
	}
	payment := req.Amount + useCredit

	// Normalize the legacy single-payer field into the contributions map
	// before adding to it; from here on paidContributions is
	// authoritative for this bill.
	contributions := s.engine.Contributions(bill)
	prePaid := contributions[req.MemberID]

	totalBefore := sumContributions(contributions)
	remaining := bill.Total() - totalBefore
	if remaining < 0 {
		remaining = 0
	}

	var earned float64
	if payment > remaining {
		earned = payment - remaining
	}

	contributions[req.MemberID] += payment
	bill.PaidContributions = contributions
	bill.PaidBy = ""

	today := s.today()
	if bill.ContributionDates == nil {
		bill.ContributionDates = make(map[string]time.Time)
	}
	bill.ContributionDates[req.MemberID] = today

	if useCredit > 0 {
		if bill.CreditUsed == nil {
			bill.CreditUsed = make(map[string]float64)
		}
		bill.CreditUsed[req.MemberID] += useCredit
	}

	if earned > 0 {
		if bill.CreditEarned == nil {
			bill.CreditEarned = make(map[string]float64)
		}
		bill.CreditEarned[req.MemberID] += earned
	}

	allocations, err := s.coverShortfalls(ctx, bill, req, payment-earned, prePaid)
	if err != nil {
		return nil, err
	}
	bill.CoverageAllocations = append(bill.CoverageAllocations, allocations...)

	state := s.engine.PaymentState(bill)
	if state.FullyPaid && !bill.IsPaid {
		bill.IsPaid = true
		bill.PaidDate = &today
	}

	// Everything above is in-memory; a failed payment leaves no partial
	// state behind. Writes start here.
	if delta := earned - useCredit; delta != 0 {
		if err := s.store.SetCredit(ctx, member.ID, member.Credit+delta); err != nil {
			return nil, err
		}
		member.Credit += delta
	}
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, err
	}
	metrics.PaymentsRecorded.Inc()

	slog.Info("Payment recorded",
		"bill_id", bill.ID, "member_id", req.MemberID,
		"amount", req.Amount, "credit_used", useCredit, "credit_earned", earned,
		"status", state.Status)

	return &PaymentResult{
		Bill:         bill,
		State:        state,
		CreditUsed:   useCredit,
		CreditEarned: earned,
		Allocations:  allocations,
	}, nil
}

// coverShortfalls builds the coverage allocations for a payment that
// earmarks members in CoveredIDs. The payer's own shortfall, measured
// against prePaid (their contribution before this payment event), is
// satisfied first; what is left of the payment covers the named members
// in order, capped at each one's current shortfall.
func (s *HouseholdService) coverShortfalls(ctx context.Context, bill *models.Bill, req PaymentRequest, payment, prePaid float64) ([]models.CoverageAllocation, error) {
	if len(req.CoveredIDs) == 0 {
		return nil, nil
	}

	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	shares := s.engine.Shares(bill, members)

	available := payment
	if ownShort := shares[req.MemberID] - prePaid; ownShort > 0 {
		available -= ownShort
	}

	var allocations []models.CoverageAllocation
	for _, coveredID := range req.CoveredIDs {
		if available <= 0 {
			break
		}
		shortfall := shares[coveredID] - bill.PaidContributions[coveredID]
		if shortfall <= 0 {
			continue
		}
		amount := shortfall
		if amount > available {
			amount = available
		}
		allocations = append(allocations, models.CoverageAllocation{
			PayerID:   req.MemberID,
			CoveredID: coveredID,
			Amount:    amount,
		})
		available -= amount
	}
	return allocations, nil
}

func (s *HouseholdService) today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

func sumContributions(m map[string]float64) float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}

// PayDown distributes a lump payment from one member across their
// outstanding bills, oldest due first, recording a contribution against
// each bill it touches.
func (s *HouseholdService) PayDown(ctx context.Context, memberID string, amount float64) ([]ledger.PaymentAllocation, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: pay-down amount must be positive", ErrValidation)
	}

	outstanding, err := s.OutstandingBills(ctx, memberID)
	if err != nil {
		return nil, err
	}
	allocations := s.engine.DistributePayment(outstanding, amount)

	for _, alloc := range allocations {
		if _, err := s.RecordPayment(ctx, PaymentRequest{
			BillID:   alloc.BillID,
			MemberID: memberID,
			Amount:   alloc.Amount,
		}); err != nil {
			return nil, fmt.Errorf("failed to apply pay-down to bill %s: %w", alloc.BillID, err)
		}
	}
	return allocations, nil
}
