package asm

import (
	"strconv"
	"strings"
)

// JumpType is the single-character jump classification carried by each position map entry.
type JumpType string

const (
	// JumpTypeJumpIn indicates a jump into a function body, e.g. an internal call.
	JumpTypeJumpIn JumpType = "i"
	// JumpTypeJumpOut indicates a jump out of a function body, e.g. a return.
	JumpTypeJumpOut JumpType = "o"
	// JumpTypeJumpWithin indicates any other control transfer or a non-jump instruction.
	JumpTypeJumpWithin JumpType = "-"
)

// valid indicates whether the jump type is one of the three recognized characters.
func (t JumpType) valid() bool {
	return t == JumpTypeJumpIn || t == JumpTypeJumpOut || t == JumpTypeJumpWithin
}

// SourceMapElement describes the source range one instruction was generated from.
type SourceMapElement struct {
	// Index is the position of this element in the overall map, matching the instruction index it describes.
	// It is a convenience for consumers and is not part of the encoded form.
	Index int

	// Offset is the byte offset into the source unit the instruction maps to.
	Offset int

	// Length is the length of the mapped source range, in bytes.
	Length int

	// FileID is the identifier of the source unit within the document's source list, or -1 when the instruction
	// maps to no user source, e.g. compiler-generated utility code.
	FileID int

	// JumpType classifies the instruction's control flow.
	JumpType JumpType

	// ModifierDepth is the modifier invocation depth the instruction was generated at.
	ModifierDepth int
}

// SourceMap is an ordered position map, one element per instruction of the bytecode it accompanies.
type SourceMap []SourceMapElement

// Encode serializes the map into its compressed textual form: semicolon-separated entries of up to five
// colon-separated fields (offset, length, file id, jump type, modifier depth). A field equal to the previous
// entry's value is omitted, and trailing empty fields of an entry are trimmed. The first entry always carries all
// five fields, so decoding never depends on out-of-band defaults.
func (s SourceMap) Encode() string {
	var sb strings.Builder
	var previous *SourceMapElement
	for i := range s {
		if i > 0 {
			sb.WriteString(";")
		}

		element := &s[i]
		fields := []string{
			strconv.Itoa(element.Offset),
			strconv.Itoa(element.Length),
			strconv.Itoa(element.FileID),
			string(element.JumpType),
			strconv.Itoa(element.ModifierDepth),
		}
		if previous != nil {
			if element.Offset == previous.Offset {
				fields[0] = ""
			}
			if element.Length == previous.Length {
				fields[1] = ""
			}
			if element.FileID == previous.FileID {
				fields[2] = ""
			}
			if element.JumpType == previous.JumpType {
				fields[3] = ""
			}
			if element.ModifierDepth == previous.ModifierDepth {
				fields[4] = ""
			}
		}

		// Trim trailing empty fields so fully-inherited entries encode as a bare semicolon.
		last := len(fields)
		for last > 0 && fields[last-1] == "" {
			last--
		}
		sb.WriteString(strings.Join(fields[:last], ":"))
		previous = element
	}
	return sb.String()
}

// DecodeSourceMap parses a compressed position map string. Empty or missing fields inherit the previous entry's
// value, per the delta encoding. The first entry must supply all five fields explicitly. If instructionCount is
// non-negative, the decoded entry count must match it exactly, otherwise a LengthMismatchError is returned.
func DecodeSourceMap(encoded string, instructionCount int) (SourceMap, error) {
	var (
		sourceMap SourceMap
		current   SourceMapElement
	)

	// An empty string encodes the empty map, not a single fully-empty entry.
	if encoded != "" {
		for i, entry := range strings.Split(encoded, ";") {
			fields := strings.Split(entry, ":")
			if len(fields) > 5 {
				return nil, &MalformedPositionMapError{Entry: i, Reason: "entry has more than five fields"}
			}
			if i == 0 {
				if len(fields) < 5 {
					return nil, &MalformedPositionMapError{Entry: 0, Reason: "first entry must supply all five fields"}
				}
				for f, field := range fields {
					if field == "" {
						return nil, &MalformedPositionMapError{Entry: 0, Reason: "first entry may not inherit field " + strconv.Itoa(f)}
					}
				}
			}

			var err error
			if len(fields) > 0 && fields[0] != "" {
				current.Offset, err = strconv.Atoi(fields[0])
				if err != nil {
					return nil, &MalformedPositionMapError{Entry: i, Reason: "non-numeric offset '" + fields[0] + "'"}
				}
			}
			if len(fields) > 1 && fields[1] != "" {
				current.Length, err = strconv.Atoi(fields[1])
				if err != nil {
					return nil, &MalformedPositionMapError{Entry: i, Reason: "non-numeric length '" + fields[1] + "'"}
				}
			}
			if len(fields) > 2 && fields[2] != "" {
				current.FileID, err = strconv.Atoi(fields[2])
				if err != nil {
					return nil, &MalformedPositionMapError{Entry: i, Reason: "non-numeric file id '" + fields[2] + "'"}
				}
			}
			if len(fields) > 3 && fields[3] != "" {
				jumpType := JumpType(fields[3])
				if !jumpType.valid() {
					return nil, &MalformedPositionMapError{Entry: i, Reason: "unknown jump type '" + fields[3] + "'"}
				}
				current.JumpType = jumpType
			}
			if len(fields) > 4 && fields[4] != "" {
				current.ModifierDepth, err = strconv.Atoi(fields[4])
				if err != nil {
					return nil, &MalformedPositionMapError{Entry: i, Reason: "non-numeric modifier depth '" + fields[4] + "'"}
				}
			}

			current.Index = i
			sourceMap = append(sourceMap, current)
		}
	}

	if instructionCount >= 0 && len(sourceMap) != instructionCount {
		return nil, &LengthMismatchError{InstructionCount: instructionCount, EntryCount: len(sourceMap)}
	}
	return sourceMap, nil
}
