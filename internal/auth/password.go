package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"homeledger/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// MemberStorage defines the interface for member persistence operations.
// This allows the authenticator to be independent of the storage
// implementation.
type MemberStorage interface {
	CreateMember(ctx context.Context, member *models.Member) error
	GetMemberByEmail(ctx context.Context, email string) (*models.Member, error)
	GetMember(ctx context.Context, id string) (*models.Member, error)
}

// PasswordAuthenticator implements password-based authentication using
// bcrypt.
type PasswordAuthenticator struct {
	storage MemberStorage
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage MemberStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{storage: storage}
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new member with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, credential string) (*models.Member, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetMemberByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	member := &models.Member{
		Name:         displayName,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := a.storage.CreateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	return member, nil
}

// Authenticate verifies the email and password, returning the member if
// valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.Member, error) {
	member, err := a.storage.GetMemberByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return member, nil
}
