package vending

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// countingStore records every flush so tests can assert that each mutation
// reaches persistence exactly once.
type countingStore struct {
	saves int
	err   error
}

func (s *countingStore) Save(context.Context, *Machine) error {
	s.saves++
	return s.err
}

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	machine := NewMachine("m-1")
	require.NoError(t, machine.LoadProduct(NewProduct("p-1", "Twist", 20, 10, "seller-1")))
	require.NoError(t, machine.RegisterAccount(NewAccount("acc-1")))
	return NewService(machine, store)
}

func TestServiceFlushesEveryMutation(t *testing.T) {
	store := &countingStore{}
	svc := newTestService(t, store)
	ctx := context.Background()

	require.NoError(t, svc.CreateAccount(ctx, "acc-2"))
	_, err := svc.MakeDeposit(ctx, "acc-2", CoinEuro)
	require.NoError(t, err)
	_, err = svc.BuyProduct(ctx, "acc-2", "p-1", 1)
	require.NoError(t, err)
	_, err = svc.CancelDeposit(ctx, "acc-2")
	require.NoError(t, err)
	require.NoError(t, svc.RemoveAccount(ctx, "acc-2"))

	require.Equal(t, 5, store.saves)
}

func TestServiceReadsDoNotFlush(t *testing.T) {
	store := &countingStore{}
	svc := newTestService(t, store)

	svc.GetProduct("p-1")
	svc.ListProducts()
	svc.CanReturnChange(20)
	_, err := svc.View("acc-1")
	require.NoError(t, err)

	require.Zero(t, store.saves)
}

func TestServiceSurfacesStoreError(t *testing.T) {
	sentinel := errors.New("pg down")
	svc := newTestService(t, &countingStore{err: sentinel})

	err := svc.CreateAccount(context.Background(), "acc-2")
	require.ErrorIs(t, err, sentinel)
}

func TestServiceNilStoreFallsBackToNop(t *testing.T) {
	svc := NewService(NewMachine("m-1"), nil)
	require.NoError(t, svc.CreateAccount(context.Background(), "acc-1"))
}

func TestServiceGetProductReturnsCopy(t *testing.T) {
	svc := newTestService(t, nil)

	copied := svc.GetProduct("p-1")
	require.NotNil(t, copied)
	copied.Available = 0

	require.Equal(t, 10, svc.GetProduct("p-1").Available)
}

func TestServiceUpdateProduct(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	require.NoError(t, svc.UpdateProduct(ctx, "p-1", "Twist XL", 25, 7))
	got := svc.GetProduct("p-1")
	require.Equal(t, "Twist XL", got.Name)
	require.Equal(t, 25, got.CostCents)
	require.Equal(t, 7, got.Available)

	require.ErrorIs(t, svc.UpdateProduct(ctx, "p-404", "x", 10, 1), ErrProductNotFound)
	require.ErrorIs(t, svc.UpdateProduct(ctx, "p-1", "x", 0, 1), ErrInvalidProduct)
}

func TestServiceUnloadProduct(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	product, err := svc.UnloadProduct(ctx, "p-1")
	require.NoError(t, err)
	require.Equal(t, "p-1", product.ID)

	product, err = svc.UnloadProduct(ctx, "p-404")
	require.NoError(t, err)
	require.Nil(t, product)
}

func TestServiceViewShowsCallerBalance(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.MakeDeposit(ctx, "acc-1", CoinFifty)
	require.NoError(t, err)

	view, err := svc.View("acc-1")
	require.NoError(t, err)
	require.Equal(t, 50, view.DepositCents)
	require.Len(t, view.Products, 1)

	_, err = svc.View("acc-404")
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestServiceBuyProductResult(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	for _, coin := range []Money{CoinTwenty, CoinTwenty, CoinTen} {
		_, err := svc.MakeDeposit(ctx, "acc-1", coin)
		require.NoError(t, err)
	}

	result, err := svc.BuyProduct(ctx, "acc-1", "p-1", 2)
	require.NoError(t, err)

	require.Equal(t, "acc-1", result.AccountID)
	require.Equal(t, StatusCommitted, result.Status)
	require.Equal(t, 40, result.TotalCents)
	require.Equal(t, 10, result.BalanceCents)
	require.Equal(t, Money{TenCent: 1}, result.Change)
	require.Equal(t, []PurchasedLine{{
		ProductID:   "p-1",
		ProductName: "Twist",
		Quantity:    2,
		CostCents:   20,
	}}, result.Purchased)
}
