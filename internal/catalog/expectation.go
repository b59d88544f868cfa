package catalog

import "fmt"

// Expectation is a lightweight post-condition asserted against a queued
// statement's result row count.
type Expectation struct {
	kind ExpectationKind
	n    int
}

// ExpectationKind is the closed set of row-count assertions a caller may
// attach to a queued statement.
type ExpectationKind int8

// Supported expectation kinds.
const (
	ExpectAny ExpectationKind = iota
	ExpectExactlyOne
	ExpectAtLeastOne
	ExpectZeroOrOne
	ExpectScalarMatch // exactly n rows
)

// ExpectExactlyOneRow returns an expectation requiring exactly one row.
func ExpectExactlyOneRow() Expectation { return Expectation{kind: ExpectExactlyOne} }

// ExpectAtLeastOneRow returns an expectation requiring one or more rows.
func ExpectAtLeastOneRow() Expectation { return Expectation{kind: ExpectAtLeastOne} }

// ExpectZeroOrOneRow returns an expectation requiring zero or one row.
func ExpectZeroOrOneRow() Expectation { return Expectation{kind: ExpectZeroOrOne} }

// ExpectRowCount returns an expectation requiring exactly n rows.
func ExpectRowCount(n int) Expectation { return Expectation{kind: ExpectScalarMatch, n: n} }

// Check evaluates the expectation against an observed row count, returning
// an error describing the mismatch if it is violated.
func (e Expectation) Check(rowCount int) error {
	switch e.kind {
	case ExpectAny:
		return nil
	case ExpectExactlyOne:
		if rowCount != 1 {
			return fmt.Errorf("expected exactly one row, got %d", rowCount)
		}
	case ExpectAtLeastOne:
		if rowCount < 1 {
			return fmt.Errorf("expected at least one row, got %d", rowCount)
		}
	case ExpectZeroOrOne:
		if rowCount > 1 {
			return fmt.Errorf("expected zero or one row, got %d", rowCount)
		}
	case ExpectScalarMatch:
		if rowCount != e.n {
			return fmt.Errorf("expected exactly %d rows, got %d", e.n, rowCount)
		}
	}

	return nil
}
