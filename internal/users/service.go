package users

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vendinglab/vending-machine/internal/auth"
)

type Repo interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
	UpdateDeposit(ctx context.Context, id string, depositCents int) error
	Remove(ctx context.Context, id string) (*User, error)
}

// Accounts is the slice of the vending service the user lifecycle needs:
// every user owns a machine account under the same id.
type Accounts interface {
	CreateAccount(ctx context.Context, accountID string) error
	RemoveAccount(ctx context.Context, accountID string) error
}

type Service struct {
	repo     Repo
	accounts Accounts
}

func NewService(repo Repo, accounts Accounts) *Service {
	return &Service{repo: repo, accounts: accounts}
}

func (s *Service) Create(ctx context.Context, username, password, role string) (*User, error) {
	parsedRole, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         parsedRole,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.accounts.CreateAccount(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Authenticate resolves the user by username and checks the password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, auth.ErrWrongPassword
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, user *User) error {
	existing, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrUserNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

// SyncDeposit mirrors the machine account balance onto the user row.
func (s *Service) SyncDeposit(ctx context.Context, id string, depositCents int) error {
	return s.repo.UpdateDeposit(ctx, id, depositCents)
}

func (s *Service) Remove(ctx context.Context, id string) (*User, error) {
	user, err := s.repo.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.accounts.RemoveAccount(ctx, id); err != nil {
		return nil, err
	}
	return user, nil
}
