package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"homeledger/internal/ledger"
	"homeledger/internal/models"
	"homeledger/internal/storage/sqlite"
)

func newTestService(t *testing.T) *HouseholdService {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewHouseholdService(store, ledger.New(ledger.Config{}))
}

func mustCreateMember(t *testing.T, svc *HouseholdService, name string) *models.Member {
	t.Helper()
	member := &models.Member{Name: name}
	require.NoError(t, svc.CreateMember(context.Background(), member))
	return member
}

func mustCreateEvenBill(t *testing.T, svc *HouseholdService, name string, amount float64, due time.Time) *models.Bill {
	t.Helper()
	bill := &models.Bill{
		Name:      name,
		Amount:    amount,
		DueDate:   due,
		Category:  "utilities",
		SplitType: models.SplitEven,
	}
	require.NoError(t, svc.CreateBill(context.Background(), bill))
	return bill
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
