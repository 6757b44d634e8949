package ledger

import (
	"math"
	"testing"
	"time"

	"homeledger/internal/models"
)

func findSettlement(t *testing.T, settlements []Settlement, from, to string) *Settlement {
	t.Helper()
	for i := range settlements {
		if settlements[i].From == from && settlements[i].To == to {
			return &settlements[i]
		}
	}
	t.Fatalf("no settlement %s -> %s in %+v", from, to, settlements)
	return nil
}

func TestResolveSettlements(t *testing.T) {
	e := testEngine()

	t.Run("full payment by one member creates inferred debt", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{ID: "b1", Name: "Electricity", Amount: 100, SplitType: models.SplitEven, PaidBy: "alice", IsPaid: true},
		}
		got := e.ResolveSettlements(bills, members, nil)
		if len(got) != 1 {
			t.Fatalf("got %d settlements, want 1: %+v", len(got), got)
		}
		s := got[0]
		if s.From != "bob" || s.To != "alice" || s.Amount != 50 {
			t.Errorf("settlement = %s owes %s %v, want bob owes alice 50", s.From, s.To, s.Amount)
		}
		if len(s.Breakdown) != 1 || s.Breakdown[0].BillID != "b1" || s.Breakdown[0].Amount != 50 {
			t.Errorf("breakdown = %+v, want one entry for b1 of 50", s.Breakdown)
		}
		if s.Breakdown[0].TheirShare != 50 {
			t.Errorf("theirShare = %v, want 50", s.Breakdown[0].TheirShare)
		}
	})

	t.Run("reciprocal debts net to a single settlement", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			// alice owes bob 50: bob paid the whole even-split bill.
			{ID: "x", Name: "Rent", Amount: 100, SplitType: models.SplitEven,
				PaidContributions: map[string]float64{"bob": 100}, IsPaid: true},
			// bob owes alice 20 via explicit coverage.
			{ID: "y", Name: "Internet", Amount: 40, SplitType: models.SplitEven,
				PaidContributions:   map[string]float64{"alice": 40},
				CoverageAllocations: []models.CoverageAllocation{{PayerID: "alice", CoveredID: "bob", Amount: 20}},
				IsPaid:              true},
		}
		got := e.ResolveSettlements(bills, members, nil)
		if len(got) != 1 {
			t.Fatalf("got %d settlements, want exactly 1: %+v", len(got), got)
		}
		s := got[0]
		if s.From != "alice" || s.To != "bob" || s.Amount != 30 {
			t.Errorf("settlement = %s owes %s %v, want alice owes bob 30", s.From, s.To, s.Amount)
		}
		if s.GrossOwed != 50 || s.GrossOffset != 20 {
			t.Errorf("gross = %v/%v, want 50/20", s.GrossOwed, s.GrossOffset)
		}
		if len(s.Breakdown) != 1 || s.Breakdown[0].BillID != "x" {
			t.Errorf("breakdown = %+v, want bill x", s.Breakdown)
		}
		if len(s.OffsetBreakdown) != 1 || s.OffsetBreakdown[0].BillID != "y" {
			t.Errorf("offsetBreakdown = %+v, want bill y", s.OffsetBreakdown)
		}
	})

	t.Run("forgiveness reduces the emitted amount exactly", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{ID: "b1", Amount: 200, SplitType: models.SplitEven,
				PaidContributions: map[string]float64{"bob": 200}, IsPaid: true},
		}
		records := []*models.SettlementRecord{
			{FromID: "alice", ToID: "bob", Amount: 40, Type: models.SettlementForgiven},
		}
		got := e.ResolveSettlements(bills, members, records)
		if len(got) != 1 {
			t.Fatalf("got %d settlements, want 1: %+v", len(got), got)
		}
		s := got[0]
		if s.From != "alice" || s.To != "bob" || s.Amount != 60 {
			t.Errorf("settlement = %s owes %s %v, want alice owes bob 60", s.From, s.To, s.Amount)
		}
		if s.Forgiven != 40 {
			t.Errorf("forgiven = %v, want 40", s.Forgiven)
		}
		if s.GrossOwed != 100 {
			t.Errorf("grossOwed = %v, want 100", s.GrossOwed)
		}
	})

	t.Run("paid records reduce like forgiveness", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{ID: "b1", Amount: 200, SplitType: models.SplitEven,
				PaidContributions: map[string]float64{"bob": 200}, IsPaid: true},
		}
		records := []*models.SettlementRecord{
			{FromID: "alice", ToID: "bob", Amount: 100, Type: models.SettlementPaid},
		}
		if got := e.ResolveSettlements(bills, members, records); len(got) != 0 {
			t.Errorf("got %+v, want no settlements after full payoff", got)
		}
	})

	t.Run("coverage overrides proportional inference", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{ID: "b1", Name: "Water", Amount: 60, SplitType: models.SplitEven,
				PaidContributions:   map[string]float64{"alice": 60},
				CoverageAllocations: []models.CoverageAllocation{{PayerID: "alice", CoveredID: "bob", Amount: 30}},
				IsPaid:              true},
		}
		got := e.ResolveSettlements(bills, members, nil)
		if len(got) != 1 {
			t.Fatalf("got %d settlements, want 1: %+v", len(got), got)
		}
		s := got[0]
		// Exactly the covered amount, no double counting from inference.
		if s.From != "bob" || s.To != "alice" || s.Amount != 30 {
			t.Errorf("settlement = %s owes %s %v, want bob owes alice 30", s.From, s.To, s.Amount)
		}
		if s.Breakdown[0].TheirShare != 30 {
			t.Errorf("theirShare = %v, want bob's share 30", s.Breakdown[0].TheirShare)
		}
	})

	t.Run("partial payment without coverage contributes nothing", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{ID: "b1", Amount: 100, SplitType: models.SplitEven,
				PaidContributions: map[string]float64{"alice": 40}},
		}
		if got := e.ResolveSettlements(bills, members, nil); len(got) != 0 {
			t.Errorf("got %+v, want none: partial bills only affect balances", got)
		}
	})

	t.Run("debt is distributed proportionally to overpayment", func(t *testing.T) {
		members := roster("alice", "bob", "carol")
		bills := []*models.Bill{
			{ID: "b1", Amount: 120, SplitType: models.SplitEven,
				PaidContributions: map[string]float64{"bob": 70, "carol": 50}, IsPaid: true},
		}
		got := e.ResolveSettlements(bills, members, nil)
		if len(got) != 2 {
			t.Fatalf("got %d settlements, want 2: %+v", len(got), got)
		}
		// alice owes 40, bob overpaid 30, carol overpaid 10.
		if s := findSettlement(t, got, "alice", "bob"); s.Amount != 30 {
			t.Errorf("alice owes bob %v, want 30", s.Amount)
		}
		if s := findSettlement(t, got, "alice", "carol"); s.Amount != 10 {
			t.Errorf("alice owes carol %v, want 10", s.Amount)
		}
	})

	t.Run("credit earned does not count as covering others", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{ID: "b1", Amount: 100, SplitType: models.SplitEven,
				PaidContributions: map[string]float64{"alice": 10, "bob": 100},
				CreditEarned:      map[string]float64{"bob": 10},
				IsPaid:            true},
		}
		got := e.ResolveSettlements(bills, members, nil)
		if len(got) != 1 {
			t.Fatalf("got %d settlements, want 1: %+v", len(got), got)
		}
		s := got[0]
		// bob's effective payment is 90, so alice owes 40, not 50.
		if s.From != "alice" || s.To != "bob" || s.Amount != 40 {
			t.Errorf("settlement = %s owes %s %v, want alice owes bob 40", s.From, s.To, s.Amount)
		}
	})

	t.Run("net at tolerance boundary is suppressed", func(t *testing.T) {
		members := roster("alice", "bob")
		covered := func(amount float64, payer, coveredID string, id string) *models.Bill {
			return &models.Bill{ID: id, Amount: amount, SplitType: models.SplitEven,
				PaidContributions:   map[string]float64{payer: amount},
				CoverageAllocations: []models.CoverageAllocation{{PayerID: payer, CoveredID: coveredID, Amount: amount / 2}},
				IsPaid:              true}
		}
		// 10.005 vs 10.00 covered halves: net 0.005 <= epsilon.
		bills := []*models.Bill{
			covered(20.01, "alice", "bob", "b1"),
			covered(20.00, "bob", "alice", "b2"),
		}
		if got := e.ResolveSettlements(bills, members, nil); len(got) != 0 {
			t.Errorf("got %+v, want net within tolerance suppressed", got)
		}

		// 10.02 vs 10.00: net 0.02 > epsilon, must appear.
		bills = []*models.Bill{
			covered(20.04, "alice", "bob", "b1"),
			covered(20.00, "bob", "alice", "b2"),
		}
		got := e.ResolveSettlements(bills, members, nil)
		if len(got) != 1 {
			t.Fatalf("got %d settlements, want 1: %+v", len(got), got)
		}
		if s := got[0]; s.From != "bob" || s.To != "alice" || math.Abs(s.Amount-0.02) > 0.001 {
			t.Errorf("settlement = %+v, want bob owes alice 0.02", s)
		}
	})

	t.Run("net of exactly epsilon is suppressed", func(t *testing.T) {
		members := roster("alice", "bob")
		// A 0.02 covered debt minus a 0.01 forgiveness is exactly 0.01
		// in float64 (powers-of-two multiples of the same literal), so
		// this pins the strict > epsilon rule at the boundary itself.
		bills := []*models.Bill{
			{ID: "b1", Amount: 0.04, SplitType: models.SplitEven,
				PaidContributions:   map[string]float64{"alice": 0.04},
				CoverageAllocations: []models.CoverageAllocation{{PayerID: "alice", CoveredID: "bob", Amount: 0.02}},
				IsPaid:              true},
		}
		records := []*models.SettlementRecord{
			{FromID: "bob", ToID: "alice", Amount: 0.01, Type: models.SettlementForgiven},
		}
		if got := e.ResolveSettlements(bills, members, records); len(got) != 0 {
			t.Errorf("got %+v, want net of exactly epsilon suppressed", got)
		}

		// Without the forgiveness the same debt is emitted.
		got := e.ResolveSettlements(bills, members, nil)
		if len(got) != 1 || got[0].From != "bob" || got[0].To != "alice" {
			t.Fatalf("got %+v, want bob owes alice", got)
		}
	})

	t.Run("records with unknown members contribute zero", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{ID: "b1", Amount: 100, SplitType: models.SplitEven,
				PaidContributions: map[string]float64{"bob": 100}, IsPaid: true},
		}
		records := []*models.SettlementRecord{
			{FromID: "alice", ToID: "ghost", Amount: 40, Type: models.SettlementForgiven},
			{FromID: "ghost", ToID: "bob", Amount: 40, Type: models.SettlementPaid},
		}
		got := e.ResolveSettlements(bills, members, records)
		if len(got) != 1 || got[0].Amount != 50 {
			t.Errorf("got %+v, want alice owes bob 50 untouched", got)
		}
	})

	t.Run("breakdown carries bill provenance", func(t *testing.T) {
		members := roster("alice", "bob")
		due := date(2026, time.February, 1)
		bills := []*models.Bill{
			{ID: "b1", Name: "Groceries", Category: "groceries", Amount: 80, DueDate: due,
				SplitType: models.SplitEven, PaidBy: "alice", IsPaid: true},
		}
		got := e.ResolveSettlements(bills, members, nil)
		bd := got[0].Breakdown[0]
		if bd.BillName != "Groceries" || bd.Category != "groceries" || !bd.DueDate.Equal(due) || bd.BillAmount != 80 {
			t.Errorf("breakdown provenance = %+v", bd)
		}
	})
}
