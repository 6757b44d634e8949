package ledger

import (
	"math"
	"testing"

	"homeledger/internal/models"
)

func TestBalances(t *testing.T) {
	e := testEngine()

	t.Run("even split paid by one member", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{Amount: 100, SplitType: models.SplitEven, PaidBy: "alice", IsPaid: true},
		}
		got := e.Balances(bills, members)
		if got["alice"] != -50 {
			t.Errorf("alice balance = %v, want -50 (owed)", got["alice"])
		}
		if got["bob"] != 50 {
			t.Errorf("bob balance = %v, want 50 (owes)", got["bob"])
		}
	})

	t.Run("partial payment caps proportional debt", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{Amount: 100, SplitType: models.SplitEven, PaidContributions: map[string]float64{"alice": 40}},
		}
		got := e.Balances(bills, members)
		// 40% paid: alice 50*0.4 - 40 = -20, bob 50*0.4 = 20.
		if got["alice"] != -20 {
			t.Errorf("alice balance = %v, want -20", got["alice"])
		}
		if got["bob"] != 20 {
			t.Errorf("bob balance = %v, want 20", got["bob"])
		}
	})

	t.Run("overpayment ratio is capped at one", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{Amount: 100, SplitType: models.SplitEven, PaidContributions: map[string]float64{"alice": 120}},
		}
		got := e.Balances(bills, members)
		if got["alice"] != -70 {
			t.Errorf("alice balance = %v, want -70", got["alice"])
		}
		if got["bob"] != 50 {
			t.Errorf("bob balance = %v, want 50", got["bob"])
		}
	})

	t.Run("payer outside the shares map is owed in full", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{
				Amount:            60,
				SplitType:         models.SplitCustom,
				CustomSplits:      map[string]float64{"alice": 30, "bob": 30},
				PaidContributions: map[string]float64{"grandma": 60},
			},
		}
		got := e.Balances(bills, members)
		if got["grandma"] != -60 {
			t.Errorf("grandma balance = %v, want -60", got["grandma"])
		}
		if got["alice"] != 30 || got["bob"] != 30 {
			t.Errorf("balances = %v, want alice:30 bob:30", got)
		}
	})

	t.Run("unpaid bills are ignored", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			{Amount: 100, SplitType: models.SplitEven},
			{Amount: 100, SplitType: models.SplitEven, IsPaid: true}, // paid but no payer on record
		}
		got := e.Balances(bills, members)
		if got["alice"] != 0 || got["bob"] != 0 {
			t.Errorf("balances = %v, want all zero", got)
		}
	})

	t.Run("zero-share bills are skipped", func(t *testing.T) {
		members := roster("alice", "bob")
		bills := []*models.Bill{
			// Malformed: percentage without splits. Must not divide by zero.
			{Amount: 100, SplitType: models.SplitPercentage, PaidContributions: map[string]float64{"alice": 100}},
		}
		got := e.Balances(bills, members)
		if got["alice"] != 0 || got["bob"] != 0 {
			t.Errorf("balances = %v, want all zero", got)
		}
	})
}

func TestBalancesConservation(t *testing.T) {
	e := testEngine()
	members := roster("alice", "bob", "carol")
	bills := []*models.Bill{
		{Amount: 90, SplitType: models.SplitEven, PaidBy: "alice", IsPaid: true},
		{Amount: 120, SplitType: models.SplitPercentage,
			CustomSplits:      map[string]float64{"alice": 50, "bob": 25, "carol": 25},
			PaidContributions: map[string]float64{"bob": 120}, IsPaid: true},
		{SplitType: models.SplitItems, IsPaid: true,
			Items:             []models.Item{{Amount: 45, AssignedTo: []string{"alice", "bob", "carol"}}},
			PaidContributions: map[string]float64{"carol": 45}},
	}

	var sum float64
	for _, balance := range e.Balances(bills, members) {
		sum += balance
	}
	if math.Abs(sum) > 0.01 {
		t.Errorf("sum of balances = %v, want ~0", sum)
	}
}
