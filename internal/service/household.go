// Package service implements the application services around the ledger
// engine: member and bill management, payment recording, credit
// bookkeeping, and settlement views. The engine stays pure; everything
// stateful happens here.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"homeledger/internal/ledger"
	"homeledger/internal/metrics"
	"homeledger/internal/models"
	"homeledger/internal/storage"
)

// ErrValidation marks errors caused by invalid input; the API layer maps
// these to 400 responses.
var ErrValidation = errors.New("validation failed")

// HouseholdService exposes everything the API needs, backed by a Store
// and the pure ledger engine.
type HouseholdService struct {
	store  storage.Store
	engine *ledger.Engine
}

// NewHouseholdService creates a new HouseholdService.
func NewHouseholdService(store storage.Store, engine *ledger.Engine) *HouseholdService {
	return &HouseholdService{store: store, engine: engine}
}

// --- Members ---

// CreateMember validates and persists a new member.
func (s *HouseholdService) CreateMember(ctx context.Context, member *models.Member) error {
	if err := validateMember(member); err != nil {
		return err
	}
	if err := s.store.CreateMember(ctx, member); err != nil {
		slog.Error("CreateMember failed", "error", err)
		return err
	}
	slog.Info("Member created", "member_id", member.ID, "name", member.Name)
	return nil
}

func (s *HouseholdService) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	return s.store.GetMember(ctx, memberID)
}

func (s *HouseholdService) ListMembers(ctx context.Context) ([]*models.Member, error) {
	return s.store.ListMembers(ctx)
}

// UpdateMember validates and persists member changes. The credit field
// is not updatable here; use the credit operations.
func (s *HouseholdService) UpdateMember(ctx context.Context, member *models.Member) error {
	if err := validateMember(member); err != nil {
		return err
	}
	existing, err := s.store.GetMember(ctx, member.ID)
	if err != nil {
		return err
	}
	member.Credit = existing.Credit
	if member.PasswordHash == "" {
		member.PasswordHash = existing.PasswordHash
	}
	return s.store.UpdateMember(ctx, member)
}

func (s *HouseholdService) DeleteMember(ctx context.Context, memberID string) error {
	return s.store.DeleteMember(ctx, memberID)
}

func validateMember(member *models.Member) error {
	if member.Name == "" {
		return fmt.Errorf("%w: member name required", ErrValidation)
	}
	if member.MortgageShare < 0 {
		return fmt.Errorf("%w: mortgage share cannot be negative", ErrValidation)
	}
	if p := member.DefaultSplitPercentage; p != nil && (*p < 0 || *p > 100) {
		return fmt.Errorf("%w: default split percentage must be 0-100", ErrValidation)
	}
	return nil
}

// --- Bills ---

// BillView is a bill together with its derived payment state.
type BillView struct {
	Bill  *models.Bill        `json:"bill"`
	State ledger.PaymentState `json:"state"`
}

// CreateBill validates and persists a new bill. Malformed bills
// (percentage/custom without splits, items without items) are rejected
// here, before they can ever reach the engine.
func (s *HouseholdService) CreateBill(ctx context.Context, bill *models.Bill) error {
	if err := bill.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("CreateBill failed", "error", err)
		return err
	}
	slog.Info("Bill created", "bill_id", bill.ID, "name", bill.Name, "split_type", bill.SplitType)
	return nil
}

func (s *HouseholdService) GetBill(ctx context.Context, billID string) (*BillView, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	return &BillView{Bill: bill, State: s.engine.PaymentState(bill)}, nil
}

func (s *HouseholdService) ListBills(ctx context.Context) ([]*BillView, error) {
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]*BillView, len(bills))
	for i, bill := range bills {
		views[i] = &BillView{Bill: bill, State: s.engine.PaymentState(bill)}
	}
	return views, nil
}

func (s *HouseholdService) UpdateBill(ctx context.Context, bill *models.Bill) error {
	if err := bill.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.store.UpdateBill(ctx, bill)
}

func (s *HouseholdService) DeleteBill(ctx context.Context, billID string) error {
	return s.store.DeleteBill(ctx, billID)
}

// --- Ledger views ---

// Balances computes the household's per-member net balances from the
// current snapshot.
func (s *HouseholdService) Balances(ctx context.Context) (map[string]float64, error) {
	bills, members, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	metrics.BalanceComputations.Inc()
	return s.engine.Balances(bills, members), nil
}

// Settlements resolves the current snapshot into net settlement
// instructions.
func (s *HouseholdService) Settlements(ctx context.Context) ([]ledger.Settlement, error) {
	bills, members, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListSettlementRecords(ctx)
	if err != nil {
		return nil, err
	}
	metrics.SettlementResolutions.Inc()
	return s.engine.ResolveSettlements(bills, members, records), nil
}

// MonthlySummary builds a member's view of one calendar month.
func (s *HouseholdService) MonthlySummary(ctx context.Context, memberID string, year int, month time.Month) (ledger.MonthlySummary, error) {
	bills, members, err := s.snapshot(ctx)
	if err != nil {
		return ledger.MonthlySummary{}, err
	}
	return s.engine.MonthlySummary(bills, members, memberID, year, month), nil
}

// OutstandingBills lists a member's unpaid share, oldest due first.
func (s *HouseholdService) OutstandingBills(ctx context.Context, memberID string) ([]ledger.BillShareLine, error) {
	bills, members, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.OutstandingBills(bills, members, memberID), nil
}

// snapshot loads the bill and member lists the engine consumes. Both
// come from the same store reads; transactional consistency across them
// is as good as SQLite's default isolation, which is sufficient for a
// single household.
func (s *HouseholdService) snapshot(ctx context.Context) ([]*models.Bill, []*models.Member, error) {
	bills, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, nil, err
	}
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, nil, err
	}
	return bills, members, nil
}

// --- Settlement records ---

// RecordSettlement appends a forgiveness or direct-payment record.
func (s *HouseholdService) RecordSettlement(ctx context.Context, record *models.SettlementRecord) error {
	if !record.Type.Valid() {
		return fmt.Errorf("%w: unknown settlement record type %q", ErrValidation, record.Type)
	}
	if record.Amount <= 0 {
		return fmt.Errorf("%w: settlement amount must be positive", ErrValidation)
	}
	if record.FromID == record.ToID {
		return fmt.Errorf("%w: cannot settle with oneself", ErrValidation)
	}
	if _, err := s.store.GetMember(ctx, record.FromID); err != nil {
		return fmt.Errorf("%w: unknown debtor %s", ErrValidation, record.FromID)
	}
	if _, err := s.store.GetMember(ctx, record.ToID); err != nil {
		return fmt.Errorf("%w: unknown creditor %s", ErrValidation, record.ToID)
	}
	if err := s.store.CreateSettlementRecord(ctx, record); err != nil {
		slog.Error("RecordSettlement failed", "error", err)
		return err
	}
	slog.Info("Settlement recorded",
		"record_id", record.ID, "from", record.FromID, "to", record.ToID,
		"amount", record.Amount, "type", record.Type)
	return nil
}

func (s *HouseholdService) ListSettlementRecords(ctx context.Context) ([]*models.SettlementRecord, error) {
	return s.store.ListSettlementRecords(ctx)
}

func (s *HouseholdService) DeleteSettlementRecord(ctx context.Context, recordID string) error {
	return s.store.DeleteSettlementRecord(ctx, recordID)
}

func (s *HouseholdService) ClearSettlementRecords(ctx context.Context) error {
	return s.store.ClearSettlementRecords(ctx)
}
