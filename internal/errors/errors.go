// SPDX-License-Identifier: AGPL-3.0-only
package errors

import (
	"errors"
	"fmt"
)

// UnknownToolError reports a tool call naming a tool that was never
// registered. It is surfaced to the conversation as a failed tool
// result, not as a run-aborting fault.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Tool)
}

// DuplicateToolError reports a second registration under an existing
// tool name. This is a startup-time configuration fault.
type DuplicateToolError struct {
	Tool string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool already registered: %s", e.Tool)
}

// ArgumentParseError reports a tool-call argument payload that is not
// valid JSON. Arguments carries the raw payload for diagnosis.
type ArgumentParseError struct {
	Tool      string
	Arguments string
	Err       error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("tool %s: parse arguments %q: %v", e.Tool, e.Arguments, e.Err)
}

func (e *ArgumentParseError) Unwrap() error { return e.Err }

// ArgumentValidationError reports parsed arguments that do not satisfy
// the tool's parameter schema (missing required keys, wrong types).
type ArgumentValidationError struct {
	Tool      string
	Arguments string
	Err       error
}

func (e *ArgumentValidationError) Error() string {
	return fmt.Sprintf("tool %s: invalid arguments %q: %v", e.Tool, e.Arguments, e.Err)
}

func (e *ArgumentValidationError) Unwrap() error { return e.Err }

// MalformedStreamError reports a streamed response that ended while a
// tool-call accumulator was still missing its name. It indicates the
// transport violated protocol expectations and aborts the round.
type MalformedStreamError struct {
	Index  int
	Reason string
}

func (e *MalformedStreamError) Error() string {
	return fmt.Sprintf("malformed stream at tool call index %d: %s", e.Index, e.Reason)
}

// TransportError wraps a completion request or stream failure,
// including auth and network faults. The round aborts; history up to
// the failed round remains valid for a retry.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsUnknownTool returns true if err is or wraps an UnknownToolError.
func IsUnknownTool(err error) bool {
	var t *UnknownToolError
	return errors.As(err, &t)
}

// IsDuplicateTool returns true if err is or wraps a DuplicateToolError.
func IsDuplicateTool(err error) bool {
	var t *DuplicateToolError
	return errors.As(err, &t)
}

// IsArgumentParse returns true if err is or wraps an ArgumentParseError.
func IsArgumentParse(err error) bool {
	var t *ArgumentParseError
	return errors.As(err, &t)
}

// IsArgumentValidation returns true if err is or wraps an ArgumentValidationError.
func IsArgumentValidation(err error) bool {
	var t *ArgumentValidationError
	return errors.As(err, &t)
}

// IsMalformedStream returns true if err is or wraps a MalformedStreamError.
func IsMalformedStream(err error) bool {
	var t *MalformedStreamError
	return errors.As(err, &t)
}

// IsTransport returns true if err is or wraps a TransportError.
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// RoundAborting reports whether err must abort the current round
// instead of being folded into a tool-result payload.
func RoundAborting(err error) bool {
	return IsMalformedStream(err) || IsTransport(err)
}
