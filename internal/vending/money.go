package vending

import "fmt"

// Money is an immutable bundle of coins. Amounts everywhere in this package
// are integer cents; Cents is recomputed from the counts so that plain
// struct equality stays structural over the five denominations.
type Money struct {
	FiveCent    int
	TenCent     int
	TwentyCent  int
	FiftyCent   int
	HundredCent int
}

// Canonical single-coin values. These are the only coins an account accepts
// per deposit call.
var (
	Zero       = Money{}
	CoinFive   = Money{FiveCent: 1}
	CoinTen    = Money{TenCent: 1}
	CoinTwenty = Money{TwentyCent: 1}
	CoinFifty  = Money{FiftyCent: 1}
	CoinEuro   = Money{HundredCent: 1}
)

var authorizedCoins = []Money{CoinFive, CoinTen, CoinTwenty, CoinFifty, CoinEuro}

func NewMoney(fiveCent, tenCent, twentyCent, fiftyCent, hundredCent int) (Money, error) {
	if fiveCent < 0 || tenCent < 0 || twentyCent < 0 || fiftyCent < 0 || hundredCent < 0 {
		return Money{}, fmt.Errorf("%w: money cannot hold a negative coin count", ErrInvalidAmount)
	}
	return Money{
		FiveCent:    fiveCent,
		TenCent:     tenCent,
		TwentyCent:  twentyCent,
		FiftyCent:   fiftyCent,
		HundredCent: hundredCent,
	}, nil
}

// Cents returns the total value of the bundle in cents.
func (m Money) Cents() int {
	return m.FiveCent*5 + m.TenCent*10 + m.TwentyCent*20 + m.FiftyCent*50 + m.HundredCent*100
}

// Add sums per denomination. Sums of non-negative counts stay non-negative,
// so Add cannot fail.
func (m Money) Add(other Money) Money {
	return Money{
		FiveCent:    m.FiveCent + other.FiveCent,
		TenCent:     m.TenCent + other.TenCent,
		TwentyCent:  m.TwentyCent + other.TwentyCent,
		FiftyCent:   m.FiftyCent + other.FiftyCent,
		HundredCent: m.HundredCent + other.HundredCent,
	}
}

// Sub subtracts per denomination and fails if any count would go negative.
// A failed Sub is how callers learn the bundle cannot physically cover what
// they asked for.
func (m Money) Sub(other Money) (Money, error) {
	return NewMoney(
		m.FiveCent-other.FiveCent,
		m.TenCent-other.TenCent,
		m.TwentyCent-other.TwentyCent,
		m.FiftyCent-other.FiftyCent,
		m.HundredCent-other.HundredCent,
	)
}

// Distribute selects coins for amountCents greedily, highest denomination
// first, limited by what the bundle actually holds. The result's value never
// exceeds amountCents but may fall short when coins run out; callers compare
// the result's Cents against the requested amount to detect the shortfall.
func (m Money) Distribute(amountCents int) Money {
	var out Money
	remain := amountCents
	out.HundredCent, remain = takeCoins(remain, 100, m.HundredCent)
	out.FiftyCent, remain = takeCoins(remain, 50, m.FiftyCent)
	out.TwentyCent, remain = takeCoins(remain, 20, m.TwentyCent)
	out.TenCent, remain = takeCoins(remain, 10, m.TenCent)
	out.FiveCent, _ = takeCoins(remain, 5, m.FiveCent)
	return out
}

func takeCoins(remainCents, coinValue, available int) (taken, remain int) {
	taken = remainCents / coinValue
	if taken > available {
		taken = available
	}
	return taken, remainCents - taken*coinValue
}

func isAuthorizedCoin(m Money) bool {
	for _, coin := range authorizedCoins {
		if m == coin {
			return true
		}
	}
	return false
}
