package ast

import "fmt"

// SchemaError indicates that an interchange document did not conform to the node schema: an unknown node kind,
// a missing required field, or an unsupported document format version.
type SchemaError struct {
	// NodeType is the node kind tag being decoded when the error occurred, if known.
	NodeType string
	// Field is the offending field name, if known.
	Field string
	// Reason describes the schema violation.
	Reason string
}

func (e *SchemaError) Error() string {
	if e.NodeType != "" && e.Field != "" {
		return fmt.Sprintf("schema error in %s node, field '%s': %s", e.NodeType, e.Field, e.Reason)
	}
	if e.NodeType != "" {
		return fmt.Sprintf("schema error in %s node: %s", e.NodeType, e.Reason)
	}
	return fmt.Sprintf("schema error: %s", e.Reason)
}

// MalformedLocationError indicates that a source location string could not be decoded, either because it did not
// split into the expected field count, a field was non-numeric, or the source unit index was out of range.
type MalformedLocationError struct {
	// Input is the raw location string that failed to decode.
	Input string
	// Reason describes why decoding failed.
	Reason string
}

func (e *MalformedLocationError) Error() string {
	return fmt.Sprintf("malformed source location '%s': %s", e.Input, e.Reason)
}

// UnknownTypeError indicates that a canonical type string could not be parsed back into a type descriptor.
type UnknownTypeError struct {
	// Input is the full type string being parsed.
	Input string
	// Offset is the byte offset within Input where parsing failed.
	Offset int
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown type '%s' (at offset %d: '%s')", e.Input, e.Offset, e.Input[e.Offset:])
}

// DanglingReferenceError indicates that a node carried a weak reference to a declaration id which does not exist
// anywhere in the imported document.
type DanglingReferenceError struct {
	// NodeID is the id of the node carrying the reference.
	NodeID int64
	// ReferencedID is the id the reference points at.
	ReferencedID int64
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("node %d references declaration %d which does not exist in the document", e.NodeID, e.ReferencedID)
}

// InternalInconsistencyError indicates that a node violated a kind-specific structural invariant, e.g. a declared
// variable without a type, a duplicate node id, or a missing required child.
type InternalInconsistencyError struct {
	// NodeID is the id of the offending node, if known.
	NodeID int64
	// Reason describes the violated invariant.
	Reason string
}

func (e *InternalInconsistencyError) Error() string {
	return fmt.Sprintf("internal inconsistency at node %d: %s", e.NodeID, e.Reason)
}
