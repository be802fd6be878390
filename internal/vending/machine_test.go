package vending

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newMachineWithAccount(t *testing.T, coins ...Money) (*Machine, *Account) {
	t.Helper()
	machine := NewMachine("m-1")
	account := NewAccount("acc-1")
	require.NoError(t, machine.RegisterAccount(account))
	for _, coin := range coins {
		_, err := machine.MakeDeposit(account.ID(), coin)
		require.NoError(t, err)
	}
	return machine, account
}

func TestMachineLoadProduct(t *testing.T) {
	machine := NewMachine("m-1")
	product := NewProduct("p-1", "Twist", 20, 10, "seller-1")

	require.NoError(t, machine.LoadProduct(product))
	require.Same(t, product, machine.GetProduct("p-1"))
}

func TestMachineCannotLoadInvalidProduct(t *testing.T) {
	machine := NewMachine("m-1")

	require.ErrorIs(t, machine.LoadProduct(nil), ErrInvalidProduct)
	require.ErrorIs(t, machine.LoadProduct(NewProduct("p-1", "Twist", -20, 10, "s")), ErrInvalidProduct)
	require.ErrorIs(t, machine.LoadProduct(NewProduct("p-1", "Twist", 20, 0, "s")), ErrInvalidProduct)
	require.Empty(t, machine.Products())
}

func TestMachineUnloadProduct(t *testing.T) {
	machine := NewMachine("m-1")
	product := NewProduct("p-1", "Twist", 20, 10, "seller-1")
	require.NoError(t, machine.LoadProduct(product))

	require.Same(t, product, machine.UnloadProduct("p-1"))
	require.Nil(t, machine.GetProduct("p-1"))

	// unknown ids are a no-op, not an error
	require.Nil(t, machine.UnloadProduct("p-404"))
}

func TestMachineRegisterAndRemoveAccount(t *testing.T) {
	machine := NewMachine("m-1")
	account := NewAccount("acc-1")

	require.NoError(t, machine.RegisterAccount(account))
	require.Same(t, account, machine.GetAccount("acc-1"))

	machine.RemoveAccount("acc-1")
	require.Nil(t, machine.GetAccount("acc-1"))

	require.ErrorIs(t, machine.RegisterAccount(nil), ErrInvalidAccount)
}

func TestMakeDepositIncreasesFloat(t *testing.T) {
	machine, account := newMachineWithAccount(t, CoinFifty, CoinFifty)

	require.Equal(t, Money{FiftyCent: 2}, machine.Money())
	require.Equal(t, 100, account.Deposit())
}

func TestMakeDepositUnknownAccount(t *testing.T) {
	machine := NewMachine("m-1")
	_, err := machine.MakeDeposit("acc-404", CoinEuro)
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestMakeDepositRejectedCoinLeavesFloatUntouched(t *testing.T) {
	machine, _ := newMachineWithAccount(t)

	twoCoins, err := NewMoney(0, 0, 0, 2, 0)
	require.NoError(t, err)
	_, err = machine.MakeDeposit("acc-1", twoCoins)
	require.ErrorIs(t, err, ErrUnauthorizedDenomination)
	require.Equal(t, Zero, machine.Money())
}

func TestCancelDepositEmptiesFloatAndAccount(t *testing.T) {
	machine, account := newMachineWithAccount(t, CoinFifty, CoinFifty)

	returned, err := machine.CancelDeposit(account.ID())
	require.NoError(t, err)

	require.Equal(t, Money{FiftyCent: 2}, returned)
	require.Equal(t, Zero, machine.Money())
	require.Zero(t, account.Deposit())
}

func TestCancelDepositPaysOutEvenWhenShort(t *testing.T) {
	// 0.30 landed in the account via coins that left the machine before
	// this balance is asked back: simulate with a restored float.
	machine := RestoreMachine("m-1", Money{HundredCent: 1}, nil, []*Account{RestoreAccount("acc-1", 30)})

	returned, err := machine.CancelDeposit("acc-1")
	require.NoError(t, err)

	// the float holds no coins under 1.00, so nothing can be paid out,
	// but the account is still zeroed
	require.Equal(t, Zero, returned)
	require.Zero(t, machine.GetAccount("acc-1").Deposit())
}

func TestBuyProductsOnlyAvailableLinesWithSufficientDeposit(t *testing.T) {
	tests := []struct {
		name              string
		buy1, wantAvail1  int
		buy2, wantAvail2  int
		wantDeposit       int
	}{
		{"both lines fulfilled", 5, 5, 20, 0, 0},
		{"second line skipped once deposit is spent", 10, 0, 1, 20, 0},
		{"first line skipped on insufficient stock", 11, 10, 20, 0, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			machine, account := newMachineWithAccount(t, CoinEuro, CoinEuro)
			product1 := NewProduct("p-1", "productName1", 20, 10, "seller-1")
			product2 := NewProduct("p-2", "productName2", 5, 20, "seller-1")
			require.NoError(t, machine.LoadProduct(product1))
			require.NoError(t, machine.LoadProduct(product2))

			buyOrder := []OrderItem{
				{ProductID: "p-1", Quantity: tc.buy1, CostCents: product1.CostCents},
				{ProductID: "p-2", Quantity: tc.buy2, CostCents: product2.CostCents},
			}
			transaction, err := machine.BuyProducts(account.ID(), buyOrder)
			require.NoError(t, err)
			require.NotEqual(t, StatusRolledBack, transaction.Status)

			require.Equal(t, tc.wantDeposit, account.Deposit())
			require.Equal(t, tc.wantAvail1, product1.Available)
			require.Equal(t, tc.wantAvail2, product2.Available)
		})
	}
}

func TestBuyProductsSkipsUnavailableQuantity(t *testing.T) {
	tests := []struct {
		available int
		toBuy     int
	}{
		{15, 16},
		{1, 10},
		{15, 20},
	}
	for _, tc := range tests {
		machine, account := newMachineWithAccount(t, CoinEuro)
		product := NewProduct("p-1", "productName1", 50, tc.available, "seller-1")
		require.NoError(t, machine.LoadProduct(product))

		buyOrder := []OrderItem{{ProductID: "p-1", Quantity: tc.toBuy, CostCents: product.CostCents}}
		transaction, err := machine.BuyProducts(account.ID(), buyOrder)
		require.NoError(t, err)

		require.Empty(t, transaction.Purchased)
		require.Equal(t, 100, account.Deposit())
		require.Equal(t, tc.available, product.Available)
	}
}

func TestBuyProductsRollsBackWhenExactChangeImpossible(t *testing.T) {
	machine, account := newMachineWithAccount(t, CoinEuro)
	product := NewProduct("p-1", "productName1", 70, 10, "seller-1")
	require.NoError(t, machine.LoadProduct(product))

	// float holds a single 1.00 coin: 0.30 change cannot be made
	transaction, err := machine.BuyProducts(account.ID(), []OrderItem{
		{ProductID: "p-1", Quantity: 1, CostCents: 70},
	})
	require.NoError(t, err)

	require.Equal(t, StatusRolledBack, transaction.Status)
	require.Equal(t, 100, account.Deposit(), "account must be refunded to pre-purchase level")
	require.Equal(t, 10, product.Available, "inventory must be restored")
}

func TestBuyProductsReturnsChangeFromFloat(t *testing.T) {
	machine := NewMachine("m-1")
	product := NewProduct("p-1", "productName1", 20, 10, "seller-1")
	require.NoError(t, machine.LoadProduct(product))

	account1 := NewAccount("acc-1")
	account2 := NewAccount("acc-2")
	require.NoError(t, machine.RegisterAccount(account1))
	require.NoError(t, machine.RegisterAccount(account2))
	for _, coin := range []Money{CoinEuro, CoinFifty, CoinTwenty} {
		_, err := machine.MakeDeposit("acc-1", coin)
		require.NoError(t, err)
	}
	for _, coin := range []Money{CoinTen, CoinFive} {
		_, err := machine.MakeDeposit("acc-2", coin)
		require.NoError(t, err)
	}

	// account1 holds 1.70; buying 0.20 leaves 1.50 to pay back
	transaction, err := machine.BuyProducts("acc-1", []OrderItem{
		{ProductID: "p-1", Quantity: 1, CostCents: 20},
	})
	require.NoError(t, err)

	require.Equal(t, StatusCommitted, transaction.Status)
	require.NotNil(t, transaction.Change)
	require.Equal(t, 150, transaction.Change.Cents())
	require.Equal(t, 35, machine.Money().Cents(), "float must shrink by the change paid out")
}

func TestBuyProductsUnknownAccount(t *testing.T) {
	machine := NewMachine("m-1")
	_, err := machine.BuyProducts("acc-404", []OrderItem{{ProductID: "p-1", Quantity: 1, CostCents: 20}})
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestBuyProductsSkipsUnknownProductMidOrder(t *testing.T) {
	machine, account := newMachineWithAccount(t, CoinEuro)
	product := NewProduct("p-1", "productName1", 50, 10, "seller-1")
	require.NoError(t, machine.LoadProduct(product))

	transaction, err := machine.BuyProducts(account.ID(), []OrderItem{
		{ProductID: "p-404", Quantity: 1, CostCents: 50},
		{ProductID: "p-1", Quantity: 2, CostCents: 50},
	})
	require.NoError(t, err)

	require.Len(t, transaction.Purchased, 1)
	require.Equal(t, "p-1", transaction.Purchased[0].ProductID)
	require.Equal(t, 100, transaction.Total())
	require.Equal(t, StatusCommitted, transaction.Status)
}

func TestBuyProductFailsUpFrontOnUnknownProduct(t *testing.T) {
	machine, _ := newMachineWithAccount(t, CoinEuro)

	_, err := machine.BuyProduct("acc-1", "p-404", 1)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestBuyProductUsesCatalogCost(t *testing.T) {
	machine, account := newMachineWithAccount(t, CoinEuro)
	product := NewProduct("p-1", "productName1", 50, 10, "seller-1")
	require.NoError(t, machine.LoadProduct(product))

	transaction, err := machine.BuyProduct(account.ID(), "p-1", 2)
	require.NoError(t, err)

	require.Equal(t, StatusCommitted, transaction.Status)
	require.Equal(t, 100, transaction.Total())
	require.Zero(t, account.Deposit())
	require.Equal(t, 8, product.Available)
}

func TestCanReturnChange(t *testing.T) {
	machine, _ := newMachineWithAccount(t,
		CoinEuro, CoinFifty, CoinFifty, CoinTwenty, CoinTen, CoinFive)

	tests := []struct {
		amount int
		want   bool
	}{
		{355, false},
		{150, true},
		{40, false},
		{75, true},
		{130, true},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, machine.CanReturnChange(tc.amount), "amount %d", tc.amount)
	}
}
