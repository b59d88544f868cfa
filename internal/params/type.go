// Package params implements the parameter coercer: the conversion of
// caller-supplied argument vectors into the canonical representation the
// execution engine consumes, including the type-specific NULL sentinels
// and the install-time type-widening rewrite.
package params

import "fmt"

// Type is one of the closed set of parameter types a statement descriptor
// may declare for a bind parameter.
type Type int8

// Supported parameter types.
const (
	TypeInvalid Type = iota
	TypeTinyInt
	TypeSmallInt
	TypeInteger
	TypeBigInt
	TypeFloat
	TypeTimestamp
	TypeString
	TypeVarbinary
	TypeDecimal
)

// String implements [fmt.Stringer].
func (t Type) String() string {
	switch t {
	case TypeTinyInt:
		return "TINYINT"
	case TypeSmallInt:
		return "SMALLINT"
	case TypeInteger:
		return "INTEGER"
	case TypeBigInt:
		return "BIGINT"
	case TypeFloat:
		return "FLOAT"
	case TypeTimestamp:
		return "TIMESTAMP"
	case TypeString:
		return "STRING"
	case TypeVarbinary:
		return "VARBINARY"
	case TypeDecimal:
		return "DECIMAL"
	default:
		return fmt.Sprintf("TypeInvalid(%d)", int8(t))
	}
}

// WidenDeclaredTypes applies the install-time widening rewrite described for
// single-statement procedures: narrow integers are promoted to BIGINT and
// NUMERIC (FLOAT's install-time alias) is promoted to FLOAT.
//
// This rewrites the expected parameter types recorded on the statement
// descriptor at catalog-install time; it is not applied again per call.
func WidenDeclaredTypes(types []Type) []Type {
	out := make([]Type, len(types))

	for i, t := range types {
		switch t {
		case TypeTinyInt, TypeSmallInt, TypeInteger:
			out[i] = TypeBigInt
		default:
			out[i] = t
		}
	}

	return out
}
