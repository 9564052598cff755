package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// AbsentSourceLocation is the reserved sentinel encoding for a node that carries no source attribution,
// e.g. compiler-synthesized nodes.
const AbsentSourceLocation = "-1:-1:-1"

// SourceUnitRef identifies one input text of a compilation. Units are referenced by index from source locations and
// are stable for the lifetime of one compilation; they are never owned by the nodes that reference them.
type SourceUnitRef struct {
	// Index is the identifier of the unit within the compilation's ordered source list.
	Index int

	// Name is the (usually path-like) name of the input text.
	Name string
}

// SourceLocation describes a byte range within one source unit.
type SourceLocation struct {
	// Start is the byte offset which marks the beginning of the range.
	Start int

	// Length is the byte length of the range.
	Length int

	// Unit is the index of the source unit the range belongs to, or -1 when the location is absent.
	Unit int
}

// IsAbsent returns true if the location is the reserved "no source attribution" sentinel.
func (l SourceLocation) IsAbsent() bool {
	return l.Start < 0 && l.Length < 0 && l.Unit < 0
}

// Encode renders the location in its interchange form, "<start>:<length>:<unitIndex>". An absent location
// encodes as the reserved sentinel.
func (l SourceLocation) Encode() string {
	if l.IsAbsent() {
		return AbsentSourceLocation
	}
	return fmt.Sprintf("%d:%d:%d", l.Start, l.Length, l.Unit)
}

// DecodeSourceLocation parses a "<start>:<length>:<unitIndex>" string against the number of source units known to
// the current compilation. The reserved sentinel decodes to an absent location. Returns a MalformedLocationError if
// the string does not split into exactly three integer fields, if start or length are negative (outside the
// sentinel), or if the unit index does not resolve to a known source unit.
func DecodeSourceLocation(s string, unitCount int) (SourceLocation, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 3 {
		return SourceLocation{}, &MalformedLocationError{Input: s, Reason: fmt.Sprintf("expected 3 fields, found %d", len(fields))}
	}

	// Parse the three integer fields.
	values := make([]int, 3)
	for i, field := range fields {
		value, err := strconv.Atoi(field)
		if err != nil {
			return SourceLocation{}, &MalformedLocationError{Input: s, Reason: fmt.Sprintf("field %d is not an integer", i)}
		}
		values[i] = value
	}
	location := SourceLocation{Start: values[0], Length: values[1], Unit: values[2]}

	// The sentinel is the only permitted form with negative fields.
	if location.IsAbsent() {
		return location, nil
	}
	if location.Start < 0 || location.Length < 0 {
		return SourceLocation{}, &MalformedLocationError{Input: s, Reason: "negative offset or length"}
	}

	// The unit index must resolve to a known source unit at decode time.
	if location.Unit < 0 || location.Unit >= unitCount {
		return SourceLocation{}, &MalformedLocationError{Input: s, Reason: fmt.Sprintf("source unit index %d is out of range (%d units)", location.Unit, unitCount)}
	}
	return location, nil
}
