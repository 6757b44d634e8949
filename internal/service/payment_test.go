package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homeledger/internal/models"
	"homeledger/internal/storage"
)

func TestRecordPaymentFullPayment(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustCreateMember(t, svc, "alice")
	mustCreateMember(t, svc, "bob")
	bill := mustCreateEvenBill(t, svc, "electricity", 100, date(2026, time.March, 1))

	result, err := svc.RecordPayment(ctx, PaymentRequest{
		BillID:   bill.ID,
		MemberID: alice.ID,
		Amount:   100,
	})
	require.NoError(t, err)

	assert.True(t, result.State.FullyPaid)
	assert.Equal(t, models.StatusPaid, result.State.Status)
	assert.Equal(t, 100.0, result.Bill.PaidContributions[alice.ID])
	assert.Empty(t, result.Bill.PaidBy)
	assert.True(t, result.Bill.IsPaid)
	require.NotNil(t, result.Bill.PaidDate)

	// Persisted, not just returned.
	view, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, view.Bill.IsPaid)
	assert.Equal(t, 100.0, view.Bill.PaidContributions[alice.ID])
}

func TestRecordPaymentPartial(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustCreateMember(t, svc, "alice")
	mustCreateMember(t, svc, "bob")
	bill := mustCreateEvenBill(t, svc, "water", 80, date(2100, time.January, 1))

	result, err := svc.RecordPayment(ctx, PaymentRequest{
		BillID:   bill.ID,
		MemberID: alice.ID,
		Amount:   30,
	})
	require.NoError(t, err)

	assert.False(t, result.State.FullyPaid)
	assert.Equal(t, models.StatusPartial, result.State.Status)
	assert.InDelta(t, 50.0, result.State.Remaining, 1e-9)
	assert.False(t, result.Bill.IsPaid)
}

func TestRecordPaymentOverpaymentEarnsCredit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustCreateMember(t, svc, "alice")
	mustCreateMember(t, svc, "bob")
	bill := mustCreateEvenBill(t, svc, "internet", 100, date(2026, time.March, 1))

	result, err := svc.RecordPayment(ctx, PaymentRequest{
		BillID:   bill.ID,
		MemberID: alice.ID,
		Amount:   120,
	})
	require.NoError(t, err)

	assert.InDelta(t, 20.0, result.CreditEarned, 1e-9)
	assert.InDelta(t, 20.0, result.Bill.CreditEarned[alice.ID], 1e-9)
	assert.True(t, result.State.FullyPaid)

	updated, err := svc.GetMember(ctx, alice.ID)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, updated.Credit, 1e-9)
}

func TestRecordPaymentUseCreditClamped(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustCreateMember(t, svc, "alice")
	mustCreateMember(t, svc, "bob")
	bill := mustCreateEvenBill(t, svc, "groceries", 100, date(2026, time.March, 1))

	_, err := svc.AddCredit(ctx, alice.ID, 30)
	require.NoError(t, err)

	// Asking for more credit than available only uses what is there.
	result, err := svc.RecordPayment(ctx, PaymentRequest{
		BillID:    bill.ID,
		MemberID:  alice.ID,
		Amount:    20,
		UseCredit: 50,
	})
	require.NoError(t, err)

	assert.InDelta(t, 30.0, result.CreditUsed, 1e-9)
	assert.InDelta(t, 50.0, result.Bill.PaidContributions[alice.ID], 1e-9)
	assert.InDelta(t, 30.0, result.Bill.CreditUsed[alice.ID], 1e-9)

	updated, err := svc.GetMember(ctx, alice.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, updated.Credit, 1e-9)
}

func TestRecordPaymentCoverage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustCreateMember(t, svc, "alice")
	bob := mustCreateMember(t, svc, "bob")
	bill := mustCreateEvenBill(t, svc, "insurance", 100, date(2026, time.March, 1))

	result, err := svc.RecordPayment(ctx, PaymentRequest{
		BillID:     bill.ID,
		MemberID:   alice.ID,
		Amount:     100,
		CoveredIDs: []string{bob.ID},
	})
	require.NoError(t, err)

	require.Len(t, result.Allocations, 1)
	alloc := result.Allocations[0]
	assert.Equal(t, alice.ID, alloc.PayerID)
	assert.Equal(t, bob.ID, alloc.CoveredID)
	assert.InDelta(t, 50.0, alloc.Amount, 1e-9)

	// Covered debt shows up as an explicit settlement, bob -> alice.
	settlements, err := svc.Settlements(ctx)
	require.NoError(t, err)
	require.Len(t, settlements, 1)
	assert.Equal(t, bob.ID, settlements[0].From)
	assert.Equal(t, alice.ID, settlements[0].To)
	assert.InDelta(t, 50.0, settlements[0].Amount, 1e-9)
}

func TestRecordPaymentCannotCoverSelf(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustCreateMember(t, svc, "alice")
	mustCreateMember(t, svc, "bob")
	bill := mustCreateEvenBill(t, svc, "rent", 100, date(2026, time.March, 1))

	// Overpay so the rejected payment would have earned credit.
	_, err := svc.RecordPayment(ctx, PaymentRequest{
		BillID:     bill.ID,
		MemberID:   alice.ID,
		Amount:     120,
		CoveredIDs: []string{alice.ID},
	})
	assert.ErrorIs(t, err, ErrValidation)

	// The rejection must leave nothing behind: no credit, no
	// contributions, no paid flag.
	updated, err := svc.GetMember(ctx, alice.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, updated.Credit, 1e-9)

	view, err := svc.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Bill.PaidContributions)
	assert.False(t, view.Bill.IsPaid)
	assert.InDelta(t, 0.0, view.State.TotalPaid, 1e-9)
}

func TestRecordPaymentCoverageCapIgnoresEarnedCredit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustCreateMember(t, svc, "alice")
	bob := mustCreateMember(t, svc, "bob")
	carol := mustCreateMember(t, svc, "carol")
	bill := mustCreateEvenBill(t, svc, "groceries", 90, date(2026, time.March, 1))

	// Bob overpays his 30 share, leaving 45 open on the bill.
	_, err := svc.RecordPayment(ctx, PaymentRequest{BillID: bill.ID, MemberID: bob.ID, Amount: 45})
	require.NoError(t, err)

	// Alice pays 60: 15 of it overshoots the bill and becomes her
	// credit, so only 45 is real money. Her own 30 share comes first,
	// leaving 15 to cover carol, not the 30 the raw payment suggests.
	result, err := svc.RecordPayment(ctx, PaymentRequest{
		BillID:     bill.ID,
		MemberID:   alice.ID,
		Amount:     60,
		CoveredIDs: []string{carol.ID},
	})
	require.NoError(t, err)

	assert.InDelta(t, 15.0, result.CreditEarned, 1e-9)
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, carol.ID, result.Allocations[0].CoveredID)
	assert.InDelta(t, 15.0, result.Allocations[0].Amount, 1e-9)
}

func TestRecordPaymentValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustCreateMember(t, svc, "alice")
	bill := mustCreateEvenBill(t, svc, "misc", 50, date(2026, time.March, 1))

	_, err := svc.RecordPayment(ctx, PaymentRequest{BillID: bill.ID, MemberID: alice.ID, Amount: -5})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordPayment(ctx, PaymentRequest{BillID: bill.ID, MemberID: alice.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.RecordPayment(ctx, PaymentRequest{BillID: "nope", MemberID: alice.ID, Amount: 10})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.RecordPayment(ctx, PaymentRequest{BillID: bill.ID, MemberID: "nope", Amount: 10})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPayDown(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustCreateMember(t, svc, "alice")
	mustCreateMember(t, svc, "bob")
	older := mustCreateEvenBill(t, svc, "older", 60, date(2026, time.March, 1))
	newer := mustCreateEvenBill(t, svc, "newer", 40, date(2026, time.April, 1))

	allocations, err := svc.PayDown(ctx, alice.ID, 40)
	require.NoError(t, err)

	require.Len(t, allocations, 2)
	assert.Equal(t, older.ID, allocations[0].BillID)
	assert.InDelta(t, 30.0, allocations[0].Amount, 1e-9)
	assert.Equal(t, newer.ID, allocations[1].BillID)
	assert.InDelta(t, 10.0, allocations[1].Amount, 1e-9)

	// The older bill's share is cleared; only the newer one remains.
	outstanding, err := svc.OutstandingBills(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, outstanding, 1)
	assert.Equal(t, newer.ID, outstanding[0].BillID)
	assert.InDelta(t, 10.0, outstanding[0].Remaining, 1e-9)
}

func TestPayDownRejectsNonPositiveAmount(t *testing.T) {
	svc := newTestService(t)
	alice := mustCreateMember(t, svc, "alice")

	_, err := svc.PayDown(context.Background(), alice.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreditOperations(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alice := mustCreateMember(t, svc, "alice")

	credit, err := svc.AddCredit(ctx, alice.ID, 25)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, credit, 1e-9)

	credit, err = svc.UseCredit(ctx, alice.ID, 10)
	require.NoError(t, err)
	assert.InDelta(t, 15.0, credit, 1e-9)

	// Credit never goes negative.
	_, err = svc.UseCredit(ctx, alice.ID, 100)
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.SetCredit(ctx, alice.ID, -1)
	assert.ErrorIs(t, err, ErrValidation)
}
