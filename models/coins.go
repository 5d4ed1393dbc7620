package models

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// DefaultCoinsPerRupee is the fixed exchange rate: 100 coins make one rupee.
const DefaultCoinsPerRupee = 100

// MaxCoins caps any single coin amount. Its rupee value fits numeric(12,2).
const MaxCoins int64 = 100_000_000_000

var ErrCoinsOutOfRange = errors.New("coin amount is out of range")

// CoinsToRupees converts a coin amount to rupees rounded to paise.
func CoinsToRupees(coins, rate int64) decimal.Decimal {
	if rate <= 0 {
		rate = DefaultCoinsPerRupee
	}
	return decimal.NewFromInt(coins).Div(decimal.NewFromInt(rate)).Round(2)
}

// RupeesToCoins converts whole rupees to coins.
func RupeesToCoins(rupees, rate int64) (int64, error) {
	if rate <= 0 {
		rate = DefaultCoinsPerRupee
	}
	return MulCoins(rupees, rate)
}

// MulCoins returns a*b for non-negative operands, refusing results above MaxCoins.
func MulCoins(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, ErrCoinsOutOfRange
	}
	if a != 0 && b > math.MaxInt64/a {
		return 0, ErrCoinsOutOfRange
	}
	if p := a * b; p <= MaxCoins {
		return p, nil
	}
	return 0, ErrCoinsOutOfRange
}
