// Package gateway routes the compiler's external queries: reading imported source files from disk and
// dispatching SMT queries to an external solver process. Every query returns a Result rather than an error, so a
// failed external interaction surfaces as a reportable outcome instead of aborting the caller.
package gateway

import (
	"context"
	"fmt"
)

// Callback kinds a gateway can be asked to service.
const (
	// KindReadFile requests the contents of a source file, with the file path as the query payload.
	KindReadFile = "source"

	// KindSMTQuery requests a solver verdict, with the SMT-LIB query text as the payload.
	KindSMTQuery = "smt-query"
)

// Result is the outcome of one external query. Success indicates the query was serviced; Content carries the file
// contents or solver output on success, and a diagnostic message otherwise.
type Result struct {
	Success bool
	Content string
}

// UniversalCallback routes queries by kind to the gateway's file reader and solver.
type UniversalCallback struct {
	fileReader *FileReader
	solver     *SolverCommand
}

// NewUniversalCallback constructs a router over the given handlers. Either handler may be nil when the
// corresponding kind is never queried.
func NewUniversalCallback(fileReader *FileReader, solver *SolverCommand) *UniversalCallback {
	return &UniversalCallback{
		fileReader: fileReader,
		solver:     solver,
	}
}

// Handle services one query. Dispatch on an unknown kind is a programming error and panics rather than returning
// a failed Result, as no caller can meaningfully recover from it.
func (c *UniversalCallback) Handle(ctx context.Context, kind string, query string) Result {
	switch kind {
	case KindReadFile:
		return c.fileReader.ReadFile(query)
	case KindSMTQuery:
		return c.solver.Solve(ctx, query)
	default:
		panic(fmt.Sprintf("unknown callback kind '%s'", kind))
	}
}
