package vending

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductSubtractOnlyWhenAvailable(t *testing.T) {
	tests := []struct {
		available int
		subtract  int
		want      int
	}{
		{15, 10, 5},
		{15, 15, 0},
		{15, 20, 15}, // insufficient stock: silent no-op
	}
	for _, tc := range tests {
		product := NewProduct("p-1", "Mars", 20, tc.available, "seller-1")
		require.NoError(t, product.Subtract(tc.subtract))
		require.Equal(t, tc.want, product.Available)
	}
}

func TestProductCannotSubtractNegativeAmount(t *testing.T) {
	product := NewProduct("p-1", "Mars", 20, 15, "seller-1")
	require.ErrorIs(t, product.Subtract(-5), ErrInvalidAmount)
	require.Equal(t, 15, product.Available)
}

func TestProductCanSubtract(t *testing.T) {
	product := NewProduct("p-1", "Mars", 20, 15, "seller-1")
	require.True(t, product.CanSubtract(12))
	require.True(t, product.CanSubtract(15))
	require.False(t, product.CanSubtract(20))
}

func TestProductAdd(t *testing.T) {
	tests := []struct {
		available int
		add       int
		want      int
	}{
		{15, 10, 25},
		{0, 15, 15},
		{15, 20, 35},
	}
	for _, tc := range tests {
		product := NewProduct("p-1", "Mars", 20, tc.available, "seller-1")
		product.Add(tc.add)
		require.Equal(t, tc.want, product.Available)
	}
}
