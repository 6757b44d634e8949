package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"homeledger/internal/models"
	"homeledger/internal/storage"
)

// CreateBill persists a new bill and all its child rows.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertBill(ctx, tx, bill); err != nil {
		return err
	}
	if err := insertBillChildren(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateBill replaces an existing bill and its child rows. Child rows
// (contributions, coverage allocations, splits, items) are rewritten
// wholesale; payment edits replace, never mutate.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var paidBy, paidDate interface{}
	if bill.PaidBy != "" {
		paidBy = bill.PaidBy
	}
	if bill.PaidDate != nil {
		paidDate = formatDate(*bill.PaidDate)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET name = ?, amount = ?, due_date = ?, category = ?, split_type = ?, paid_by = ?, paid_date = ?, is_paid = ?
		 WHERE id = ?`,
		bill.Name, bill.Amount, formatDate(bill.DueDate), bill.Category, string(bill.SplitType),
		paidBy, paidDate, bill.IsPaid, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bill %s: %w", bill.ID, storage.ErrNotFound)
	}

	for _, table := range []string{"bill_items", "custom_splits", "contributions", "bill_credit", "coverage_allocations"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE bill_id = ?", bill.ID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertBillChildren(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertBill(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	var paidBy, paidDate interface{}
	if bill.PaidBy != "" {
		paidBy = bill.PaidBy
	}
	if bill.PaidDate != nil {
		paidDate = formatDate(*bill.PaidDate)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO bills (id, name, amount, due_date, category, split_type, paid_by, paid_date, is_paid, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Name, bill.Amount, formatDate(bill.DueDate), bill.Category, string(bill.SplitType),
		paidBy, paidDate, bill.IsPaid, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

func insertBillChildren(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bill_items (id, bill_id, name, amount) VALUES (?, ?, ?, ?)",
			item.ID, bill.ID, item.Name, item.Amount,
		); err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		for _, memberID := range item.AssignedTo {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, member_id) VALUES (?, ?)",
				item.ID, memberID,
			); err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}

	for memberID, value := range bill.CustomSplits {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO custom_splits (bill_id, member_id, value) VALUES (?, ?, ?)",
			bill.ID, memberID, value,
		); err != nil {
			return fmt.Errorf("failed to insert custom split: %w", err)
		}
	}

	for memberID, amount := range bill.PaidContributions {
		var paidAt interface{}
		if d, ok := bill.ContributionDates[memberID]; ok {
			paidAt = formatDate(d)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO contributions (bill_id, member_id, amount, paid_at) VALUES (?, ?, ?, ?)",
			bill.ID, memberID, amount, paidAt,
		); err != nil {
			return fmt.Errorf("failed to insert contribution: %w", err)
		}
	}

	credit := make(map[string][2]float64)
	for memberID, used := range bill.CreditUsed {
		c := credit[memberID]
		c[0] = used
		credit[memberID] = c
	}
	for memberID, earned := range bill.CreditEarned {
		c := credit[memberID]
		c[1] = earned
		credit[memberID] = c
	}
	for memberID, c := range credit {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bill_credit (bill_id, member_id, used, earned) VALUES (?, ?, ?, ?)",
			bill.ID, memberID, c[0], c[1],
		); err != nil {
			return fmt.Errorf("failed to insert bill credit: %w", err)
		}
	}

	for _, ca := range bill.CoverageAllocations {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO coverage_allocations (bill_id, payer_id, covered_id, amount) VALUES (?, ?, ?, ?)",
			bill.ID, ca.PayerID, ca.CoveredID, ca.Amount,
		); err != nil {
			return fmt.Errorf("failed to insert coverage allocation: %w", err)
		}
	}

	return nil
}

// GetBill retrieves a bill by ID, including all child rows.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var dueDate string
	var paidBy, paidDate sql.NullString
	var splitType string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, amount, due_date, category, split_type, paid_by, paid_date, is_paid, created_at
		 FROM bills WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.Name, &bill.Amount, &dueDate, &bill.Category, &splitType,
		&paidBy, &paidDate, &bill.IsPaid, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	if err := decodeBillRow(bill, dueDate, splitType, paidBy, paidDate); err != nil {
		return nil, err
	}
	if err := s.loadBillChildren(ctx, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBills retrieves all bills with their child rows, ordered by due
// date.
func (s *SQLiteStore) ListBills(ctx context.Context) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, amount, due_date, category, split_type, paid_by, paid_date, is_paid, created_at
		 FROM bills ORDER BY due_date, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []*models.Bill
	for rows.Next() {
		bill := &models.Bill{}
		var dueDate, splitType string
		var paidBy, paidDate sql.NullString
		if err := rows.Scan(&bill.ID, &bill.Name, &bill.Amount, &dueDate, &bill.Category, &splitType,
			&paidBy, &paidDate, &bill.IsPaid, &bill.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		if err := decodeBillRow(bill, dueDate, splitType, paidBy, paidDate); err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	for _, bill := range bills {
		if err := s.loadBillChildren(ctx, bill); err != nil {
			return nil, err
		}
	}
	return bills, nil
}

func decodeBillRow(bill *models.Bill, dueDate, splitType string, paidBy, paidDate sql.NullString) error {
	due, err := parseDate(dueDate)
	if err != nil {
		return fmt.Errorf("failed to parse due date: %w", err)
	}
	bill.DueDate = due
	bill.SplitType = models.SplitType(splitType)
	if paidBy.Valid {
		bill.PaidBy = paidBy.String
	}
	if paidDate.Valid {
		pd, err := parseDate(paidDate.String)
		if err != nil {
			return fmt.Errorf("failed to parse paid date: %w", err)
		}
		bill.PaidDate = &pd
	}
	return nil
}

func (s *SQLiteStore) loadBillChildren(ctx context.Context, bill *models.Bill) error {
	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, amount FROM bill_items WHERE bill_id = ?", bill.ID)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.Item
		if err := itemRows.Scan(&item.ID, &item.Name, &item.Amount); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		assignRows, err := s.db.QueryContext(ctx,
			"SELECT member_id FROM item_assignments WHERE item_id = ? ORDER BY member_id", item.ID)
		if err != nil {
			return fmt.Errorf("failed to get item assignments: %w", err)
		}
		for assignRows.Next() {
			var memberID string
			if err := assignRows.Scan(&memberID); err != nil {
				assignRows.Close()
				return fmt.Errorf("failed to scan assignment: %w", err)
			}
			item.AssignedTo = append(item.AssignedTo, memberID)
		}
		assignRows.Close()
		if err := assignRows.Err(); err != nil {
			return fmt.Errorf("failed to iterate assignments: %w", err)
		}
		bill.Items = append(bill.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx,
		"SELECT member_id, value FROM custom_splits WHERE bill_id = ?", bill.ID)
	if err != nil {
		return fmt.Errorf("failed to get custom splits: %w", err)
	}
	defer splitRows.Close()
	for splitRows.Next() {
		var memberID string
		var value float64
		if err := splitRows.Scan(&memberID, &value); err != nil {
			return fmt.Errorf("failed to scan custom split: %w", err)
		}
		if bill.CustomSplits == nil {
			bill.CustomSplits = make(map[string]float64)
		}
		bill.CustomSplits[memberID] = value
	}
	if err := splitRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate custom splits: %w", err)
	}

	contribRows, err := s.db.QueryContext(ctx,
		"SELECT member_id, amount, paid_at FROM contributions WHERE bill_id = ?", bill.ID)
	if err != nil {
		return fmt.Errorf("failed to get contributions: %w", err)
	}
	defer contribRows.Close()
	for contribRows.Next() {
		var memberID string
		var amount float64
		var paidAt sql.NullString
		if err := contribRows.Scan(&memberID, &amount, &paidAt); err != nil {
			return fmt.Errorf("failed to scan contribution: %w", err)
		}
		if bill.PaidContributions == nil {
			bill.PaidContributions = make(map[string]float64)
		}
		bill.PaidContributions[memberID] = amount
		if paidAt.Valid {
			d, err := parseDate(paidAt.String)
			if err != nil {
				return fmt.Errorf("failed to parse contribution date: %w", err)
			}
			if bill.ContributionDates == nil {
				bill.ContributionDates = make(map[string]time.Time)
			}
			bill.ContributionDates[memberID] = d
		}
	}
	if err := contribRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate contributions: %w", err)
	}

	creditRows, err := s.db.QueryContext(ctx,
		"SELECT member_id, used, earned FROM bill_credit WHERE bill_id = ?", bill.ID)
	if err != nil {
		return fmt.Errorf("failed to get bill credit: %w", err)
	}
	defer creditRows.Close()
	for creditRows.Next() {
		var memberID string
		var used, earned float64
		if err := creditRows.Scan(&memberID, &used, &earned); err != nil {
			return fmt.Errorf("failed to scan bill credit: %w", err)
		}
		if used != 0 {
			if bill.CreditUsed == nil {
				bill.CreditUsed = make(map[string]float64)
			}
			bill.CreditUsed[memberID] = used
		}
		if earned != 0 {
			if bill.CreditEarned == nil {
				bill.CreditEarned = make(map[string]float64)
			}
			bill.CreditEarned[memberID] = earned
		}
	}
	if err := creditRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate bill credit: %w", err)
	}

	coverRows, err := s.db.QueryContext(ctx,
		"SELECT payer_id, covered_id, amount FROM coverage_allocations WHERE bill_id = ? ORDER BY rowid", bill.ID)
	if err != nil {
		return fmt.Errorf("failed to get coverage allocations: %w", err)
	}
	defer coverRows.Close()
	for coverRows.Next() {
		var ca models.CoverageAllocation
		if err := coverRows.Scan(&ca.PayerID, &ca.CoveredID, &ca.Amount); err != nil {
			return fmt.Errorf("failed to scan coverage allocation: %w", err)
		}
		bill.CoverageAllocations = append(bill.CoverageAllocations, ca)
	}
	if err := coverRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate coverage allocations: %w", err)
	}

	return nil
}

// DeleteBill removes a bill; child rows cascade.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}
