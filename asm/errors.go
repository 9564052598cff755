package asm

import "fmt"

// SchemaError indicates that an assembly interchange document did not conform to the expected shape: an unknown
// instruction name, a missing required field, or a malformed entry.
type SchemaError struct {
	// Field is the offending field or instruction name, if known.
	Field string
	// Reason describes the schema violation.
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("assembly schema error in '%s': %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("assembly schema error: %s", e.Reason)
}

// UnresolvedTagError indicates a PushTag or PushData reference which does not resolve to exactly one Tag or data
// item in its own or any enclosing scope.
type UnresolvedTagError struct {
	// TagID is the unresolved tag identifier, when the reference is a tag reference.
	TagID int64
	// DataName is the unresolved data identifier, when the reference is a data reference.
	DataName string
}

func (e *UnresolvedTagError) Error() string {
	if e.DataName != "" {
		return fmt.Sprintf("reference to data item '%s' does not resolve in this or any enclosing code block", e.DataName)
	}
	return fmt.Sprintf("reference to tag %d does not resolve in this code block", e.TagID)
}

// MalformedBytecodeError indicates raw bytecode which could not be decoded or emitted, e.g. a hex decoding failure
// or a push immediate wider than its operation allows.
type MalformedBytecodeError struct {
	Reason string
}

func (e *MalformedBytecodeError) Error() string {
	return fmt.Sprintf("malformed bytecode: %s", e.Reason)
}

// MalformedPositionMapError indicates a position map string which could not be decoded: a non-numeric field, an
// unknown jump type character, or a first entry which does not supply every field.
type MalformedPositionMapError struct {
	// Entry is the index of the offending entry.
	Entry int
	// Reason describes why decoding failed.
	Reason string
}

func (e *MalformedPositionMapError) Error() string {
	return fmt.Sprintf("malformed position map at entry %d: %s", e.Entry, e.Reason)
}

// LengthMismatchError indicates a position map whose entry count differs from the instruction count it is paired
// with.
type LengthMismatchError struct {
	InstructionCount int
	EntryCount       int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("position map has %d entries but is paired with %d instructions", e.EntryCount, e.InstructionCount)
}
