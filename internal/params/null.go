package params

import "math"

// NULL sentinels for each supported type, per the closed coercion table.
//
// These are engine-level sentinel values, not a Go nil: the engine cannot
// represent SQL NULL any other way across the wire, so each type reserves
// one bit pattern to mean NULL.
var (
	NullTinyInt   int8    = math.MinInt8
	NullSmallInt  int16   = math.MinInt16
	NullInteger   int32   = math.MinInt32
	NullBigInt    int64   = math.MinInt64
	NullTimestamp int64   = math.MinInt64 // microseconds since epoch
	NullFloat     float64 = nullFloatBits()

	// NullString/NullVarbinary/NullDecimal are designated marker values:
	// the zero value of their Go representation is a valid non-null empty
	// value, so NULL needs a distinguishable marker, not absence.
	NullMarker = &nullMarker{}
)

// nullMarker is a unique, comparable sentinel used for STRING, VARBINARY,
// and DECIMAL NULLs. Its identity (not its content) is what matters:
// a coerced value `== NullMarker` means "this parameter is NULL".
type nullMarker struct{}

// nullFloatBits returns the designated NaN payload used to mark a NULL
// FLOAT parameter, distinct from a NaN arising from computation.
func nullFloatBits() float64 {
	return math.Float64frombits(0x7FF8000000000001)
}

// IsNullFloat reports whether f is the FLOAT NULL sentinel.
func IsNullFloat(f float64) bool {
	return math.Float64bits(f) == math.Float64bits(NullFloat)
}

// NullSentinel returns the canonical NULL value for t, or an
// UnknownTypeForNull error if t has no defined NULL representation.
func NullSentinel(t Type) (any, error) {
	switch t {
	case TypeTinyInt:
		return NullTinyInt, nil
	case TypeSmallInt:
		return NullSmallInt, nil
	case TypeInteger:
		return NullInteger, nil
	case TypeBigInt:
		return NullBigInt, nil
	case TypeFloat:
		return NullFloat, nil
	case TypeTimestamp:
		return NullTimestamp, nil
	case TypeString, TypeVarbinary, TypeDecimal:
		return NullMarker, nil
	default:
		return nil, &UnknownTypeForNullError{Type: t}
	}
}
