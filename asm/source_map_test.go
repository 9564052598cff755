package asm

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deltaSampleMap exercises every inheritance case of the delta encoding: a changed prefix, a fully inherited
// entry, a leading inherited field, and a trailing changed field.
func deltaSampleMap() SourceMap {
	return SourceMap{
		{Index: 0, Offset: 0, Length: 120, FileID: 0, JumpType: JumpTypeJumpWithin, ModifierDepth: 0},
		{Index: 1, Offset: 10, Length: 30, FileID: 0, JumpType: JumpTypeJumpWithin, ModifierDepth: 0},
		{Index: 2, Offset: 10, Length: 30, FileID: 0, JumpType: JumpTypeJumpWithin, ModifierDepth: 0},
		{Index: 3, Offset: 10, Length: 5, FileID: 1, JumpType: JumpTypeJumpIn, ModifierDepth: 0},
		{Index: 4, Offset: 40, Length: 5, FileID: 1, JumpType: JumpTypeJumpOut, ModifierDepth: 1},
	}
}

// TestSourceMapEncodeDelta pins the exact compressed form of the sample map against a golden file.
func TestSourceMapEncodeDelta(t *testing.T) {
	encoded := deltaSampleMap().Encode()
	g := goldie.New(t)
	g.Assert(t, "delta_position_map", []byte(encoded))
}

// TestSourceMapRoundTrip ensures encoding and decoding are inverse over the sample map.
func TestSourceMapRoundTrip(t *testing.T) {
	original := deltaSampleMap()
	encoded := original.Encode()

	decoded, err := DecodeSourceMap(encoded, len(original))
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	// The re-encoding of the decoded map is byte-identical.
	assert.Equal(t, encoded, decoded.Encode())
}

// TestSourceMapEmpty ensures the empty string encodes the empty map, not a single entry.
func TestSourceMapEmpty(t *testing.T) {
	assert.Equal(t, "", SourceMap{}.Encode())

	decoded, err := DecodeSourceMap("", 0)
	require.NoError(t, err)
	assert.Len(t, decoded, 0)
}

// TestSourceMapFirstEntryMustBeComplete ensures the first entry cannot inherit: it must carry all five fields
// explicitly.
func TestSourceMapFirstEntryMustBeComplete(t *testing.T) {
	inputs := []string{
		"0:120:0:-",
		"0:120",
		":120:0:-:0",
		"0::0:-:0",
		"0:120:0::0",
		";0:120:0:-:0",
	}
	for _, input := range inputs {
		_, err := DecodeSourceMap(input, -1)
		assert.Error(t, err, "expected '%s' to be rejected", input)

		var malformed *MalformedPositionMapError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 0, malformed.Entry)
	}
}

// TestSourceMapRejectsMalformedFields ensures non-numeric fields, unknown jump types, and oversized entries are
// decoding errors.
func TestSourceMapRejectsMalformedFields(t *testing.T) {
	inputs := []string{
		"0:120:0:-:0;x",
		"0:120:0:-:0;10:y",
		"0:120:0:-:0;:::x",
		"0:120:0:-:0;1:2:3:-:4:5",
	}
	for _, input := range inputs {
		_, err := DecodeSourceMap(input, -1)
		assert.Error(t, err, "expected '%s' to be rejected", input)

		var malformed *MalformedPositionMapError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 1, malformed.Entry)
	}
}

// TestSourceMapLengthPairing ensures a map paired with a mismatched instruction count is rejected, while a
// negative expected count skips the check.
func TestSourceMapLengthPairing(t *testing.T) {
	encoded := deltaSampleMap().Encode()

	_, err := DecodeSourceMap(encoded, 3)
	assert.Error(t, err)

	var mismatch *LengthMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 3, mismatch.InstructionCount)
	assert.Equal(t, 5, mismatch.EntryCount)

	decoded, err := DecodeSourceMap(encoded, -1)
	require.NoError(t, err)
	assert.Len(t, decoded, 5)
}
