package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendinglab/vending-machine/internal/users"
)

type UserRepo struct {
	DB *pgxpool.Pool
}

func (r *UserRepo) Create(ctx context.Context, u *users.User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO users(id, username, password_hash, role, deposit_cents, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.DepositCents, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.get(ctx, `SELECT id, username, password_hash, role, deposit_cents, created_at, updated_at
	                   FROM users WHERE id=$1`, id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.get(ctx, `SELECT id, username, password_hash, role, deposit_cents, created_at, updated_at
	                   FROM users WHERE username=$1`, username)
}

func (r *UserRepo) get(ctx context.Context, query, arg string) (*users.User, error) {
	var u users.User
	err := r.DB.QueryRow(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.DepositCents, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *users.User) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE users SET username=$2, role=$3, deposit_cents=$4, updated_at=$5 WHERE id=$1`,
		u.ID, u.Username, u.Role, u.DepositCents, u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return users.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) UpdateDeposit(ctx context.Context, id string, depositCents int) error {
	_, err := r.DB.Exec(ctx, `UPDATE users SET deposit_cents=$2, updated_at=now() WHERE id=$1`, id, depositCents)
	return err
}

func (r *UserRepo) Remove(ctx context.Context, id string) (*users.User, error) {
	user, err := r.GetByID(ctx, id)
	if err != nil || user == nil {
		return nil, err
	}
	if _, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id=$1`, id); err != nil {
		return nil, err
	}
	return user, nil
}
