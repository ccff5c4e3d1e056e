// Package par2 orchestrates an external parity tool (par2cmdline or a
// compatible implementation) to create, verify and repair recovery data
// for single files.
//
// The tool is modeled as a capability interface so the engine can be
// exercised without spawning processes.
package par2

import (
	"context"
)

// Outcome classifies the result of a tool invocation on one file.
//
// The zero value is OutcomeToolError: classification fails closed, and any
// output not positively matching a known signature stays a tool error. A
// false-positive integrity signal is the one failure this package must
// never produce.
type Outcome int

const (
	// OutcomeToolError indicates an unexpected exit or unrecognized output
	OutcomeToolError Outcome = iota

	// OutcomeOK indicates the file and its recovery data are intact, no repair needed
	OutcomeOK

	// OutcomeRepairPossible indicates damage that the available recovery data can fix
	OutcomeRepairPossible

	// OutcomeRepairImpossible indicates damage exceeding the available recovery data
	OutcomeRepairImpossible
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeRepairPossible:
		return "repair possible"
	case OutcomeRepairImpossible:
		return "repair impossible"
	default:
		return "tool error"
	}
}

// Report is the classified result of a verify or repair invocation
type Report struct {
	Outcome Outcome

	// Detail carries the matched signature line plus any block/file details
	// extracted from the tool output
	Detail string

	// Output is the full captured tool output, kept for operator diagnosis
	Output string
}

// Tool is the capability surface of the external parity tool.
//
// All calls are synchronous and operate on one absolute file path; there is
// no mid-file cancellation beyond the context killing the subprocess.
type Tool interface {
	// Create generates recovery data sized to tolerate parityPercent
	// corruption and returns the root-relative basenames of the
	// generated artifacts
	Create(ctx context.Context, file string, parityPercent int) ([]string, error)

	// Verify runs the tool's check mode and classifies its output
	Verify(ctx context.Context, file string) Report

	// Repair attempts to reconstruct the file from its recovery data.
	// It is invoked only by explicit operator action.
	Repair(ctx context.Context, file string) Report
}
