package booking

import (
	"github.com/shopspring/decimal"

	"travelagency/pkg/apperr"
)

type CurrencyScale int32

const DefaultCurrencyScale CurrencyScale = 2

const MaxTravelers = 50

// Total prices a booking as unit price times travelers, rounded to scale.
func Total(unit decimal.Decimal, travelers int, scale CurrencyScale) (decimal.Decimal, error) {
	if unit.IsNegative() {
		return decimal.Zero, apperr.Invalid("price", unit.String(), "package price must be >= 0")
	}
	if travelers < 1 || travelers > MaxTravelers {
		return decimal.Zero, apperr.Invalid("travelers", decimal.NewFromInt(int64(travelers)).String(), "travelers must be between 1 and 50")
	}
	if scale <= 0 {
		scale = DefaultCurrencyScale
	}
	return unit.Mul(decimal.NewFromInt(int64(travelers))).Round(int32(scale)), nil
}
