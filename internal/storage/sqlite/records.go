package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"homeledger/internal/models"
	"homeledger/internal/storage"
)

// CreateSettlementRecord persists a new settlement record.
func (s *SQLiteStore) CreateSettlementRecord(ctx context.Context, record *models.SettlementRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlement_records (id, from_id, to_id, amount, type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.FromID, record.ToID, record.Amount, string(record.Type), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement record: %w", err)
	}
	return nil
}

// ListSettlementRecords retrieves all settlement records, newest first.
func (s *SQLiteStore) ListSettlementRecords(ctx context.Context) ([]*models.SettlementRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_id, to_id, amount, type, created_at
		 FROM settlement_records ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlement records: %w", err)
	}
	defer rows.Close()

	var records []*models.SettlementRecord
	for rows.Next() {
		record := &models.SettlementRecord{}
		var recordType string
		if err := rows.Scan(&record.ID, &record.FromID, &record.ToID,
			&record.Amount, &recordType, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement record: %w", err)
		}
		record.Type = models.SettlementRecordType(recordType)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement records: %w", err)
	}
	return records, nil
}

// DeleteSettlementRecord removes a settlement record by ID.
func (s *SQLiteStore) DeleteSettlementRecord(ctx context.Context, recordID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlement_records WHERE id = ?", recordID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("settlement record %s: %w", recordID, storage.ErrNotFound)
	}
	return nil
}

// ClearSettlementRecords removes all settlement records.
func (s *SQLiteStore) ClearSettlementRecords(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM settlement_records")
	if err != nil {
		return fmt.Errorf("failed to clear settlement records: %w", err)
	}
	return nil
}
