package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// minorUnitFactor converts major units to the smallest denomination. All
// supported currencies use two decimal places (e.g. naira to kobo).
var minorUnitFactor = decimal.NewFromInt(100)

// ToMinorUnits converts a major-unit amount to the gateway's minor currency
// unit. The conversion must be integer-exact; amounts that are not a whole
// number of minor units are rejected rather than rounded.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	minor := amount.Mul(minorUnitFactor)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %s is not representable in minor units", amount.String())
	}
	return minor.IntPart(), nil
}

// FromMinorUnits converts a minor-unit amount back to major units.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(minorUnitFactor)
}
