package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vendinglab/vending-machine/internal/auth"
)

type fakeRepo struct {
	byID map[string]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[string]*User{}}
}

func (r *fakeRepo) Create(_ context.Context, u *User) error {
	r.byID[u.ID] = u
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	return r.byID[id], nil
}

func (r *fakeRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range r.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) Update(_ context.Context, u *User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return ErrUserNotFound
	}
	r.byID[u.ID] = u
	return nil
}

func (r *fakeRepo) UpdateDeposit(_ context.Context, id string, depositCents int) error {
	if u, ok := r.byID[id]; ok {
		u.DepositCents = depositCents
	}
	return nil
}

func (r *fakeRepo) Remove(_ context.Context, id string) (*User, error) {
	u := r.byID[id]
	delete(r.byID, id)
	return u, nil
}

type fakeAccounts struct {
	created []string
	removed []string
}

func (a *fakeAccounts) CreateAccount(_ context.Context, accountID string) error {
	a.created = append(a.created, accountID)
	return nil
}

func (a *fakeAccounts) RemoveAccount(_ context.Context, accountID string) error {
	a.removed = append(a.removed, accountID)
	return nil
}

func TestCreateUserOpensMachineAccount(t *testing.T) {
	accounts := &fakeAccounts{}
	svc := NewService(newFakeRepo(), accounts)

	user, err := svc.Create(context.Background(), "alice", "s3cret", "Buyer")
	require.NoError(t, err)

	require.NotEmpty(t, user.ID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, RoleBuyer, user.Role)
	require.NotEqual(t, "s3cret", user.PasswordHash)
	require.Equal(t, []string{user.ID}, accounts.created)
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAccounts{})
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", "s3cret", "Buyer")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "alice", "other", "Seller")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAccounts{})

	_, err := svc.Create(context.Background(), "alice", "s3cret", "admin")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAccounts{})
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", "s3cret", "Seller")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.Equal(t, created.ID, user.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	require.ErrorIs(t, err, auth.ErrWrongPassword)

	_, err = svc.Authenticate(ctx, "bob", "s3cret")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUnknownUser(t *testing.T) {
	svc := NewService(newFakeRepo(), &fakeAccounts{})

	_, err := svc.Get(context.Background(), "u-404")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRemoveUserClosesMachineAccount(t *testing.T) {
	accounts := &fakeAccounts{}
	svc := NewService(newFakeRepo(), accounts)
	ctx := context.Background()

	user, err := svc.Create(ctx, "alice", "s3cret", "Buyer")
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, removed.ID)
	require.Equal(t, []string{user.ID}, accounts.removed)

	_, err = svc.Remove(ctx, user.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestSyncDeposit(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &fakeAccounts{})
	ctx := context.Background()

	user, err := svc.Create(ctx, "alice", "s3cret", "Buyer")
	require.NoError(t, err)

	require.NoError(t, svc.SyncDeposit(ctx, user.ID, 150))
	require.Equal(t, 150, repo.byID[user.ID].DepositCents)
}
