package service

import (
	"context"
	"fmt"
	"log/slog"
)

// AddCredit increases a member's credit balance.
func (s *HouseholdService) AddCredit(ctx context.Context, memberID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: credit amount must be positive", ErrValidation)
	}
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	credit := member.Credit + amount
	if err := s.store.SetCredit(ctx, memberID, credit); err != nil {
		return 0, err
	}
	slog.Info("Credit added", "member_id", memberID, "amount", amount, "credit", credit)
	return credit, nil
}

// UseCredit decreases a member's credit balance outside a bill payment
// (e.g. a manual correction). Fails rather than going negative.
func (s *HouseholdService) UseCredit(ctx context.Context, memberID string, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: credit amount must be positive", ErrValidation)
	}
	member, err := s.store.GetMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	if amount > member.Credit {
		return 0, fmt.Errorf("%w: member %s has only %.2f credit", ErrValidation, memberID, member.Credit)
	}
	credit := member.Credit - amount
	if err := s.store.SetCredit(ctx, memberID, credit); err != nil {
		return 0, err
	}
	slog.Info("Credit used", "member_id", memberID, "amount", amount, "credit", credit)
	return credit, nil
}

// SetCredit overwrites a member's credit balance.
func (s *HouseholdService) SetCredit(ctx context.Context, memberID string, credit float64) error {
	if credit < 0 {
		return fmt.Errorf("%w: credit cannot be negative", ErrValidation)
	}
	if _, err := s.store.GetMember(ctx, memberID); err != nil {
		return err
	}
	if err := s.store.SetCredit(ctx, memberID, credit); err != nil {
		return err
	}
	slog.Info("Credit set", "member_id", memberID, "credit", credit)
	return nil
}
