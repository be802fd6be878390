package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vendinglab/vending-machine/internal/vending"
)

// MachineStore persists whole-aggregate snapshots. The in-memory machine is
// authoritative; each Save rewrites its rows inside one transaction so a
// restart rehydrates exactly the last flushed state.
type MachineStore struct {
	DB *pgxpool.Pool
}

func (s *MachineStore) Save(ctx context.Context, m *vending.Machine) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	money := m.Money()
	_, err = tx.Exec(ctx, `
		INSERT INTO machines(id, five_cent, ten_cent, twenty_cent, fifty_cent, hundred_cent)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			five_cent=EXCLUDED.five_cent, ten_cent=EXCLUDED.ten_cent,
			twenty_cent=EXCLUDED.twenty_cent, fifty_cent=EXCLUDED.fifty_cent,
			hundred_cent=EXCLUDED.hundred_cent
	`, m.ID(), money.FiveCent, money.TenCent, money.TwentyCent, money.FiftyCent, money.HundredCent)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM machine_products WHERE machine_id=$1`, m.ID()); err != nil {
		return err
	}
	// position keeps load order; product ids are deliberately not unique
	for i, p := range m.Products() {
		_, err := tx.Exec(ctx, `
			INSERT INTO machine_products(machine_id, id, position, name, cost_cents, available, seller_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			m.ID(), p.ID, i, p.Name, p.CostCents, p.Available, p.SellerID, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM machine_accounts WHERE machine_id=$1`, m.ID()); err != nil {
		return err
	}
	for _, a := range m.Accounts() {
		_, err := tx.Exec(ctx, `
			INSERT INTO machine_accounts(machine_id, id, deposit_cents)
			VALUES ($1,$2,$3)`,
			m.ID(), a.ID(), a.Deposit(),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Load rehydrates the machine with the given id, or returns a fresh one when
// nothing was persisted yet.
func (s *MachineStore) Load(ctx context.Context, machineID string) (*vending.Machine, error) {
	var c5, c10, c20, c50, c100 int
	err := s.DB.QueryRow(ctx, `
		SELECT five_cent, ten_cent, twenty_cent, fifty_cent, hundred_cent
		FROM machines WHERE id=$1`, machineID).Scan(&c5, &c10, &c20, &c50, &c100)
	if err == pgx.ErrNoRows {
		return vending.NewMachine(machineID), nil
	}
	if err != nil {
		return nil, err
	}
	money, err := vending.NewMoney(c5, c10, c20, c50, c100)
	if err != nil {
		return nil, err
	}

	rows, err := s.DB.Query(ctx, `
		SELECT id, name, cost_cents, available, seller_id, created_at, updated_at
		FROM machine_products WHERE machine_id=$1 ORDER BY position`, machineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*vending.Product
	for rows.Next() {
		var p vending.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.CostCents, &p.Available, &p.SellerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	accountRows, err := s.DB.Query(ctx, `
		SELECT id, deposit_cents FROM machine_accounts WHERE machine_id=$1 ORDER BY id`, machineID)
	if err != nil {
		return nil, err
	}
	defer accountRows.Close()

	var accounts []*vending.Account
	for accountRows.Next() {
		var id string
		var deposit int
		if err := accountRows.Scan(&id, &deposit); err != nil {
			return nil, err
		}
		accounts = append(accounts, vending.RestoreAccount(id, deposit))
	}
	if err := accountRows.Err(); err != nil {
		return nil, err
	}

	return vending.RestoreMachine(machineID, money, products, accounts), nil
}
