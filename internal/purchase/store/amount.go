package store

import (
	"github.com/shopspring/decimal"
)

// toAmount normalizes the storage representation of a monetary total at the
// read boundary. Depending on driver and column type a NUMERIC may surface as
// a string, byte slice, float or int; nulls and unparseable values coerce to
// zero rather than failing the listing.
func toAmount(v any) decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return val
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	case []byte:
		d, err := decimal.NewFromString(string(val))
		if err != nil {
			return decimal.Zero
		}
		return d
	case float64:
		return decimal.NewFromFloat(val)
	case int64:
		return decimal.NewFromInt(val)
	default:
		return decimal.Zero
	}
}
