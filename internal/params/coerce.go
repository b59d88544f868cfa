package params

import (
	"fmt"
	"math"
	"time"
)

// Set is the canonical, coerced representation of one statement's bind
// parameters: one value per declared [Type], in declaration order.
type Set []any

// Coerce converts caller-supplied arguments args against the declared
// parameter types, producing the canonical [Set] the engine consumes.
//
// A nil entry in args means "no value was supplied for this slot" and is
// coerced to the type-specific NULL sentinel. Non-nil entries are
// best-effort widened to the declared type.
func Coerce(types []Type, args []any) (Set, error) {
	if len(args) != len(types) {
		return nil, &ArityMismatchError{Expected: len(types), Received: len(args)}
	}

	out := make(Set, len(types))

	for i, t := range types {
		a := args[i]

		if a == nil {
			v, err := NullSentinel(t)
			if err != nil {
				return nil, err
			}

			out[i] = v

			continue
		}

		v, err := coerceValue(t, a)
		if err != nil {
			return nil, &TypeError{Index: i, Want: t, Got: a}
		}

		out[i] = v
	}

	return out, nil
}

// InjectSysprocContext prepends ctx as slot 0 of args, as required before
// arity checking for system procedures.
func InjectSysprocContext(ctx any, args []any) []any {
	out := make([]any, 0, len(args)+1)
	out = append(out, ctx)
	out = append(out, args...)

	return out
}

// coerceValue performs best-effort widening of a to the declared type t.
func coerceValue(t Type, a any) (any, error) {
	switch t {
	case TypeTinyInt:
		v, ok := asInt64(a)
		if !ok || v < math.MinInt8 || v > math.MaxInt8 {
			return nil, fmt.Errorf("cannot coerce %v to TINYINT", a)
		}

		return int8(v), nil

	case TypeSmallInt:
		v, ok := asInt64(a)
		if !ok || v < math.MinInt16 || v > math.MaxInt16 {
			return nil, fmt.Errorf("cannot coerce %v to SMALLINT", a)
		}

		return int16(v), nil

	case TypeInteger:
		v, ok := asInt64(a)
		if !ok || v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("cannot coerce %v to INTEGER", a)
		}

		return int32(v), nil

	case TypeBigInt:
		v, ok := asInt64(a)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %v to BIGINT", a)
		}

		return v, nil

	case TypeFloat:
		v, ok := asFloat64(a)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %v to FLOAT", a)
		}

		return v, nil

	case TypeTimestamp:
		switch v := a.(type) {
		case time.Time:
			return v.UnixMicro(), nil
		case int64:
			return v, nil
		default:
			iv, ok := asInt64(a)
			if !ok {
				return nil, fmt.Errorf("cannot coerce %v to TIMESTAMP", a)
			}

			return iv, nil
		}

	case TypeString:
		switch v := a.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		default:
			return nil, fmt.Errorf("cannot coerce %v to STRING", a)
		}

	case TypeVarbinary:
		v, ok := a.([]byte)
		if !ok {
			return nil, fmt.Errorf("cannot coerce %v to VARBINARY", a)
		}

		return v, nil

	case TypeDecimal:
		return coerceDecimal(a)

	default:
		return nil, fmt.Errorf("unsupported parameter type %s", t)
	}
}

// asInt64 widens any common integer or numeric-looking value to int64.
func asInt64(a any) (int64, bool) {
	switch v := a.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float32:
		if float32(int64(v)) == v {
			return int64(v), true
		}
	case float64:
		if float64(int64(v)) == v {
			return int64(v), true
		}
	}

	return 0, false
}

// asFloat64 widens any common numeric value to float64.
func asFloat64(a any) (float64, bool) {
	switch v := a.(type) {
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	return 0, false
}
