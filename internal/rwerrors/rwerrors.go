// SPDX-License-Identifier: Apache-2.0

// Package rwerrors defines the fatal-fault type raised when the rewriting
// engine hits a condition it treats as a programming error rather than
// recoverable input: a translator given an operator it has no case for, a
// traversal whose result stack underflows, or a handler returning the wrong
// operand arity. These are invariant violations, not malformed-input errors,
// so they panic; only a REPL or CLI boundary recovers them.
package rwerrors

import (
	"fmt"

	"github.com/tliron/commonlog"
)

// Fault codes, grouped the way engine subsystems are grouped.
const (
	// F001-F099: traversal / dispatch faults
	FaultStackUnderflow  = "F001"
	FaultNoHandler       = "F002"
	FaultResultArity     = "F003"

	// F100-F199: translator faults
	FaultUnknownOperator = "F100"
	FaultUnsupportedSort = "F101"

	// F200-F299: construction faults (non-fatal, returned as plain errors
	// by the term package; listed here only for GetFaultCategory)
	FaultSortMismatch = "F200"
)

// GetFaultCategory names the subsystem a fault code belongs to.
func GetFaultCategory(code string) string {
	switch {
	case code >= "F001" && code < "F100":
		return "Traversal"
	case code >= "F100" && code < "F200":
		return "Translation"
	case code >= "F200" && code < "F300":
		return "Construction"
	default:
		return "Unknown"
	}
}

// RwFault is raised by panic for an invariant the engine assumes can never
// be violated by well-formed terms. Code identifies which invariant; Detail
// carries the offending value's description.
type RwFault struct {
	Code   string
	Detail string
}

func (f *RwFault) Error() string {
	return fmt.Sprintf("[%s] %s: %s", f.Code, GetFaultCategory(f.Code), f.Detail)
}

// Raise logs the fault at Critical level through commonlog and panics with
// it. Callers at the top of the call stack (CLI, REPL) recover and report;
// nothing in between is expected to catch it.
func Raise(log commonlog.Logger, code, detail string) {
	f := &RwFault{Code: code, Detail: detail}
	if log != nil {
		log.Critical(f.Error())
	}
	panic(f)
}

// Recover turns a panicking *RwFault into an error for a boundary that
// wants to report and continue instead of crashing. Re-panics anything
// that isn't an *RwFault, since those are truly unexpected.
func Recover() (err error) {
	if r := recover(); r != nil {
		if f, ok := r.(*RwFault); ok {
			err = f
			return
		}
		panic(r)
	}
	return nil
}
