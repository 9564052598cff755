package asm

import (
	"testing"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSampleBlock constructs a creation block exercising every instruction kind, a nested runtime sub-assembly,
// and a raw data item.
func buildSampleBlock() *CodeBlock {
	ref := SourceRef{Begin: 25, End: 170, Source: 0}
	return &CodeBlock{
		Instructions: []Instruction{
			&Operation{SourceRef: ref, Op: vm.PUSH1, Pushed: uint256.NewInt(0x80)},
			&Operation{SourceRef: ref, Op: vm.PUSH2, Pushed: uint256.NewInt(0x01)},
			&Operation{SourceRef: ref, Op: vm.MSTORE},
			&Tag{SourceRef: ref, ID: 1},
			&PushTag{SourceRef: ref, ID: 1},
			&Operation{SourceRef: SourceRef{Begin: 25, End: 170, Source: 0, JumpType: JumpTypeJumpIn}, Op: vm.JUMP},
			&PushData{SourceRef: ref, Name: "1"},
			&PushLibraryAddress{SourceRef: ref, Name: "lib/Math.sol:Math"},
			&Operation{SourceRef: SourceRef{Begin: 25, End: 170, Source: 0, ModifierDepth: 2}, Op: vm.STOP},
		},
		Subs: map[string]*CodeBlock{
			"0": {
				Instructions: []Instruction{
					&Tag{SourceRef: ref, ID: 1},
					&Operation{SourceRef: SourceRef{Begin: 40, End: 60, Source: 1, JumpType: JumpTypeJumpOut}, Op: vm.JUMP},
				},
			},
		},
		Data: map[string][]byte{"1": {0xca, 0xfe}},
	}
}

// TestBlockDocumentRoundTrip ensures exporting a block, importing the document, and re-exporting it is
// byte-identical under the same formatting options.
func TestBlockDocumentRoundTrip(t *testing.T) {
	document := ExportBlock(buildSampleBlock())
	encoded, err := document.Encode(0)
	require.NoError(t, err)

	block, err := ImportDocument(encoded)
	require.NoError(t, err)

	reencoded, err := ExportBlock(block).Encode(0)
	require.NoError(t, err)
	assert.Equal(t, string(encoded), string(reencoded))
}

// TestBlockDocumentIndentationIsPresentationOnly ensures indented and compact encodings decode to the same block.
func TestBlockDocumentIndentationIsPresentationOnly(t *testing.T) {
	document := ExportBlock(buildSampleBlock())
	compact, err := document.Encode(0)
	require.NoError(t, err)
	indented, err := document.Encode(2)
	require.NoError(t, err)
	assert.NotEqual(t, string(compact), string(indented))

	block, err := ImportDocument(indented)
	require.NoError(t, err)
	recompacted, err := ExportBlock(block).Encode(0)
	require.NoError(t, err)
	assert.Equal(t, string(compact), string(recompacted))
}

// TestImportedBlockAssemblesIdentically ensures a round-tripped block assembles to the same bytecode and position
// map as the original, which is what downstream consumers of the interchange form rely on.
func TestImportedBlockAssemblesIdentically(t *testing.T) {
	original := buildSampleBlock()
	originalResult, err := original.Assemble()
	require.NoError(t, err)

	encoded, err := ExportBlock(original).Encode(0)
	require.NoError(t, err)
	imported, err := ImportDocument(encoded)
	require.NoError(t, err)

	importedResult, err := imported.Assemble()
	require.NoError(t, err)
	assert.Equal(t, originalResult.BytecodeHex, importedResult.BytecodeHex)
	assert.Equal(t, originalResult.SourceMap.Encode(), importedResult.SourceMap.Encode())
	assert.Equal(t, originalResult.OpcodeListing, importedResult.OpcodeListing)
}

// TestImportRecoversPushWidths ensures the exact push operation is recovered from the zero-padded operand, so
// PUSH2 0x0001 does not collapse into PUSH1 0x01 across a round trip.
func TestImportRecoversPushWidths(t *testing.T) {
	encoded, err := ExportBlock(buildSampleBlock()).Encode(0)
	require.NoError(t, err)
	block, err := ImportDocument(encoded)
	require.NoError(t, err)

	wide, ok := block.Instructions[1].(*Operation)
	require.True(t, ok)
	assert.Equal(t, vm.PUSH2, wide.Op)
	assert.True(t, wide.Pushed.Eq(uint256.NewInt(0x01)))

	narrow, ok := block.Instructions[0].(*Operation)
	require.True(t, ok)
	assert.Equal(t, vm.PUSH1, narrow.Op)
}

// TestImportPreservesSourceRefs ensures source ranges, jump types, and modifier depths survive the round trip,
// including the implicit within-function default.
func TestImportPreservesSourceRefs(t *testing.T) {
	encoded, err := ExportBlock(buildSampleBlock()).Encode(0)
	require.NoError(t, err)
	block, err := ImportDocument(encoded)
	require.NoError(t, err)

	assert.Equal(t, JumpTypeJumpIn, block.Instructions[5].Ref().JumpType)
	assert.Equal(t, JumpTypeJumpWithin, block.Instructions[0].Ref().JumpType)
	assert.Equal(t, 2, block.Instructions[8].Ref().ModifierDepth)
	assert.Equal(t, 25, block.Instructions[0].Ref().Begin)
	assert.Equal(t, 170, block.Instructions[0].Ref().End)

	runtime := block.Subs["0"]
	require.NotNil(t, runtime)
	assert.Equal(t, JumpTypeJumpOut, runtime.Instructions[1].Ref().JumpType)
	assert.Equal(t, 1, runtime.Instructions[1].Ref().Source)
}

// TestImportRejectsMalformedDocuments ensures the importer is strict about names, values, and data entries.
func TestImportRejectsMalformedDocuments(t *testing.T) {
	rejected := []string{
		// Not JSON at all.
		`{`,
		// An unknown instruction name.
		`{".code": [{"begin": 0, "end": 1, "name": "FROB", "source": 0}]}`,
		// A sized push spelled as a mnemonic instead of the PUSH item form.
		`{".code": [{"begin": 0, "end": 1, "name": "PUSH1", "source": 0, "value": "80"}]}`,
		// A push operand that is not hex.
		`{".code": [{"begin": 0, "end": 1, "name": "PUSH", "source": 0, "value": "zz"}]}`,
		// A push operand wider than 32 bytes.
		`{".code": [{"begin": 0, "end": 1, "name": "PUSH", "source": 0, "value": "` + strings66 + `"}]}`,
		// A tag without an identifier.
		`{".code": [{"begin": 0, "end": 1, "name": "tag", "source": 0}]}`,
		// A tag with a non-numeric identifier.
		`{".code": [{"begin": 0, "end": 1, "name": "PUSH [tag]", "source": 0, "value": "x"}]}`,
		// An instruction without a name.
		`{".code": [{"begin": 0, "end": 1, "source": 0}]}`,
		// An unknown jump type character.
		`{".code": [{"begin": 0, "end": 1, "name": "JUMP", "source": 0, "jumpType": "z"}]}`,
	}
	for _, input := range rejected {
		_, err := ImportDocument([]byte(input))
		assert.Error(t, err, "expected document to be rejected: %s", input)
	}

	// A data entry that is not valid hex.
	_, err := ImportDocument([]byte(`{".code": [], ".data": {"1": "zz"}}`))
	var malformed *MalformedBytecodeError
	require.ErrorAs(t, err, &malformed)
}

// strings66 is a 33-byte (66 hex character) push operand used to exercise the operand width bound.
const strings66 = "010203040506070809000102030405060708090001020304050607080900010203"

// TestImportAcceptsBareMnemonics ensures operations without immediates import from their mnemonic names,
// including PUSH0 which carries no operand.
func TestImportAcceptsBareMnemonics(t *testing.T) {
	block, err := ImportDocument([]byte(`{".code": [
		{"begin": 0, "end": 1, "name": "PUSH0", "source": 0},
		{"begin": 0, "end": 1, "name": "ADD", "source": 0},
		{"begin": 0, "end": 1, "name": "SSTORE", "source": 0}
	]}`))
	require.NoError(t, err)
	require.Len(t, block.Instructions, 3)

	push0, ok := block.Instructions[0].(*Operation)
	require.True(t, ok)
	assert.Equal(t, vm.PUSH0, push0.Op)
	assert.Nil(t, push0.Pushed)
}
