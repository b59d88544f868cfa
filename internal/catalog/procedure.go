package catalog

import "github.com/eoneil1942/sprunner/internal/params"

// Language tags a procedure's user-code implementation.
type Language int8

// Supported procedure languages.
const (
	LanguageNative Language = iota // compiled into the process, invoked via a registered entry point
	LanguageScript                 // hosted script dialect
)

// Procedure is the catalog's immutable description of one stored
// procedure: its partitioning metadata, language, and (for
// single-statement procedures) its one cached [Descriptor].
type Procedure struct {
	Name     string
	ReadOnly bool
	System   bool
	Language Language

	// ParamTypes is the procedure's own call signature, checked against
	// caller-supplied arguments before user code runs (§4.1's "Coerce"
	// step). For single-statement procedures this is the same vector as
	// SingleStatement.ParamTypes.
	ParamTypes []params.Type

	// SinglePartition is false for multi-partition ("everywhere") procedures.
	SinglePartition  bool
	PartitionColumn  int
	PartitionColType params.Type

	// SingleStatement holds the one statement this procedure runs, for
	// procedures compiled down to a single SQL statement with no user code.
	// Nil for procedures that invoke a run() entry point.
	SingleStatement *Descriptor
}

// HasJava reports whether the procedure has a native (compiled) entry
// point to reflectively or statically dispatch to, as opposed to being a
// single-statement procedure or script procedure.
func (p *Procedure) HasJava() bool {
	return p.Language == LanguageNative && p.SingleStatement == nil
}
