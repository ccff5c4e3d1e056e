// Package status exports the errors produced by the parkeep engine.
//
// Higher level packages wrap these sentinels with root and path context;
// callers classify failures with errors.Is.
package status

import (
	"github.com/pkg/errors"
)

var (
	// ErrNotFound indicates a root has no manifest. Legal only before init.
	ErrNotFound = errors.New("manifest not found")

	// ErrAlreadyInitialized indicates an init attempt against a root that already carries a manifest
	ErrAlreadyInitialized = errors.New("root already initialized")

	// ErrCorrupt indicates an unparsable manifest document, requiring manual repair
	ErrCorrupt = errors.New("manifest is corrupt")

	// ErrVersionMismatch indicates a manifest written by a newer tool than the one running.
	// The tool must be upgraded; proceeding with mismatched schema semantics is never attempted.
	ErrVersionMismatch = errors.New("manifest schema version is newer than this tool")

	// ErrRootMismatch indicates roots from different backup sets supplied to one invocation
	ErrRootMismatch = errors.New("roots do not belong to the same backup set")

	// ErrFileMismatch indicates a file to add differs in bytes across roots
	ErrFileMismatch = errors.New("file content differs across roots")

	// ErrBusy indicates the root-local advisory lock is already held by another invocation
	ErrBusy = errors.New("root is locked by another invocation")

	// ErrDuplicatePath indicates an add for a path already tracked by a manifest
	ErrDuplicatePath = errors.New("path is already tracked")

	// ErrOutsideData indicates a path that does not resolve under the data directory
	ErrOutsideData = errors.New("path is outside the data directory")

	// ErrMembersAbsent indicates a mutation attempted while some members of the backup set
	// were not supplied to the invocation
	ErrMembersAbsent = errors.New("not all members of the backup set are present")

	// ErrToolError indicates the external parity tool failed or produced unrecognized output
	ErrToolError = errors.New("parity tool error")

	// ErrRepairImpossible indicates insufficient recovery data to repair a file
	ErrRepairImpossible = errors.New("repair is not possible")
)
