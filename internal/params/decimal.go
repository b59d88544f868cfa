package params

import (
	"fmt"
	"math/big"
)

// Decimal is the DECIMAL parameter representation: an exact rational value
// backed by [big.Rat]. The input's scale is not kept ("1.50" and "1.5" are
// the same value), and String prints the reduced fraction, such as "3/2".
//
// No decimal/money library appears anywhere in the retrieved example
// corpus, so this single component is built on the standard library;
// see DESIGN.md for the justification.
type Decimal struct {
	Rat *big.Rat
}

// String implements [fmt.Stringer].
func (d Decimal) String() string {
	if d.Rat == nil {
		return "<nil>"
	}

	return d.Rat.RatString()
}

// coerceDecimal best-effort widens a to a [Decimal].
func coerceDecimal(a any) (any, error) {
	switch v := a.(type) {
	case Decimal:
		return v, nil
	case *big.Rat:
		return Decimal{Rat: v}, nil
	case string:
		r, ok := new(big.Rat).SetString(v)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %q to DECIMAL", v)
		}

		return Decimal{Rat: r}, nil
	case int64:
		return Decimal{Rat: new(big.Rat).SetInt64(v)}, nil
	case float64:
		r := new(big.Rat)
		r.SetFloat64(v)

		return Decimal{Rat: r}, nil
	default:
		return nil, fmt.Errorf("cannot coerce %v (%T) to DECIMAL", a, a)
	}
}
