// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"homeledger/internal/models"
)

// ErrNotFound is returned (wrapped) when a requested entity does not
// exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for household storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Implementations must round-trip optional-field semantics faithfully:
// a bill saved with a nil contributions map must come back with a nil
// map, since field absence gates the engine's fallback dispatch.
type Store interface {
	// Members.
	CreateMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, memberID string) (*models.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)
	ListMembers(ctx context.Context) ([]*models.Member, error)
	UpdateMember(ctx context.Context, member *models.Member) error
	DeleteMember(ctx context.Context, memberID string) error

	// SetCredit stores a member's credit balance. The never-negative
	// invariant is enforced by the credit service, not here.
	SetCredit(ctx context.Context, memberID string, credit float64) error

	// Bills.
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)
	ListBills(ctx context.Context) ([]*models.Bill, error)
	UpdateBill(ctx context.Context, bill *models.Bill) error
	DeleteBill(ctx context.Context, billID string) error

	// Settlement records: append-only, deleted singly or cleared in bulk.
	CreateSettlementRecord(ctx context.Context, record *models.SettlementRecord) error
	ListSettlementRecords(ctx context.Context) ([]*models.SettlementRecord, error)
	DeleteSettlementRecord(ctx context.Context, recordID string) error
	ClearSettlementRecords(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
