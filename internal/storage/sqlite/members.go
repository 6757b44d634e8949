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

// CreateMember persists a new member, generating an ID and timestamp if
// unset.
func (s *SQLiteStore) CreateMember(ctx context.Context, member *models.Member) error {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.CreatedAt == 0 {
		member.CreatedAt = time.Now().Unix()
	}

	var pct interface{}
	if member.DefaultSplitPercentage != nil {
		pct = *member.DefaultSplitPercentage
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO members (id, name, email, password_hash, mortgage_share, default_split_pct, credit, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		member.ID, member.Name, nullIfEmpty(member.Email), member.PasswordHash,
		member.MortgageShare, pct, member.Credit, member.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert member: %w", err)
	}
	return nil
}

// GetMember retrieves a member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, memberID string) (*models.Member, error) {
	return s.getMember(ctx, "id = ?", memberID)
}

// GetMemberByEmail retrieves a member by email.
func (s *SQLiteStore) GetMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	return s.getMember(ctx, "email = ?", email)
}

func (s *SQLiteStore) getMember(ctx context.Context, where string, arg interface{}) (*models.Member, error) {
	member := &models.Member{}
	var email sql.NullString
	var pct sql.NullFloat64

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, mortgage_share, default_split_pct, credit, created_at
		 FROM members WHERE `+where,
		arg,
	).Scan(&member.ID, &member.Name, &email, &member.PasswordHash,
		&member.MortgageShare, &pct, &member.Credit, &member.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %v: %w", arg, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	member.Email = email.String
	if pct.Valid {
		member.DefaultSplitPercentage = &pct.Float64
	}
	return member, nil
}

// ListMembers retrieves all members ordered by name.
func (s *SQLiteStore) ListMembers(ctx context.Context) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, password_hash, mortgage_share, default_split_pct, credit, created_at
		 FROM members ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		var email sql.NullString
		var pct sql.NullFloat64
		if err := rows.Scan(&member.ID, &member.Name, &email, &member.PasswordHash,
			&member.MortgageShare, &pct, &member.Credit, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		member.Email = email.String
		if pct.Valid {
			member.DefaultSplitPercentage = &pct.Float64
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// UpdateMember updates an existing member.
func (s *SQLiteStore) UpdateMember(ctx context.Context, member *models.Member) error {
	var pct interface{}
	if member.DefaultSplitPercentage != nil {
		pct = *member.DefaultSplitPercentage
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE members SET name = ?, email = ?, password_hash = ?, mortgage_share = ?, default_split_pct = ?, credit = ?
		 WHERE id = ?`,
		member.Name, nullIfEmpty(member.Email), member.PasswordHash, member.MortgageShare, pct, member.Credit, member.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %s: %w", member.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteMember removes a member by ID.
func (s *SQLiteStore) DeleteMember(ctx context.Context, memberID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM members WHERE id = ?", memberID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	return nil
}

// SetCredit stores a member's credit balance.
func (s *SQLiteStore) SetCredit(ctx context.Context, memberID string, credit float64) error {
	res, err := s.db.ExecContext(ctx, "UPDATE members SET credit = ? WHERE id = ?", credit, memberID)
	if err != nil {
		return fmt.Errorf("failed to set credit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %s: %w", memberID, storage.ErrNotFound)
	}
	return nil
}
