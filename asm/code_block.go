package asm

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/slices"
)

// maxLayoutIterations bounds the symbolic push width fixpoint. The width only ever grows, so the bound is never
// reached for real programs; it guards against pathological trees.
const maxLayoutIterations = 16

// CodeBlock is the in-memory form of one assembly scope: an ordered instruction stream, nested sub-assemblies
// (e.g. the runtime code carried inside creation code), and raw data items referenced by PushData instructions.
type CodeBlock struct {
	Instructions []Instruction

	// Subs are nested code blocks, keyed by their document identifier. Each sub-assembly is laid out
	// independently of its parent.
	Subs map[string]*CodeBlock

	// Data are raw data items, keyed by identifier. Keys are disjoint from Subs keys.
	Data map[string][]byte
}

// AssembleResult is the output of laying out and assembling one code block. All views are derived from the same
// layout, so offsets in the bytecode, the position map, and the opcode listing are mutually consistent.
type AssembleResult struct {
	// BytecodeHex is the assembled bytecode as a hex string. Unlinked library references appear as textual
	// placeholders, so the string is only hex-decodable once fully linked.
	BytecodeHex string

	// SourceMap has one element per instruction, in instruction order.
	SourceMap SourceMap

	// OpcodeListing is a space-separated human-readable listing of the assembled operations.
	OpcodeListing string

	// TagOffsets maps each tag identifier to its block-relative byte offset.
	TagOffsets map[int64]int

	// DataOffsets maps each emitted data item to its byte offset past the end of the code.
	DataOffsets map[string]int
}

// Bytecode decodes the assembled bytecode into raw bytes. It fails with a MalformedBytecodeError when the
// bytecode still contains unlinked library placeholders.
func (r *AssembleResult) Bytecode() ([]byte, error) {
	decoded, err := hex.DecodeString(r.BytecodeHex)
	if err != nil {
		return nil, &MalformedBytecodeError{Reason: err.Error()}
	}
	return decoded, nil
}

// HasUnlinkedLibraries indicates whether the bytecode still carries library placeholders.
func (r *AssembleResult) HasUnlinkedLibraries() bool {
	return strings.Contains(r.BytecodeHex, "__$")
}

// LibraryPlaceholder derives the deterministic link-time placeholder for a fully qualified library name. The
// placeholder occupies exactly 20 bytecode bytes, the width of the address it stands in for.
func LibraryPlaceholder(name string) string {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(name))
	return "__$" + hex.EncodeToString(hash.Sum(nil))[:34] + "$__"
}

// Assemble lays out the block and emits its bytecode, position map, and opcode listing. Layout runs a fixpoint
// over the symbolic push width: tag and data offsets depend on the width of the pushes referencing them, and the
// width depends on the largest offset, so the width starts at one byte and grows until stable.
func (b *CodeBlock) Assemble() (*AssembleResult, error) {
	return b.assembleIn(nil)
}

// assembleIn assembles the block with the given enclosing scope chain, ordered outermost first, used to resolve
// PushData references to data defined by a parent block.
func (b *CodeBlock) assembleIn(enclosing []*CodeBlock) (*AssembleResult, error) {
	dataItems, err := b.resolveData(enclosing)
	if err != nil {
		return nil, err
	}
	dataNames := make([]string, 0, len(dataItems))
	for name := range dataItems {
		dataNames = append(dataNames, name)
	}
	slices.Sort(dataNames)

	// Layout fixpoint: compute offsets under the current push width, then widen if any offset needs more bytes.
	width := 1
	var (
		tagOffsets  map[int64]int
		dataOffsets map[string]int
	)
	for iteration := 0; ; iteration++ {
		if iteration == maxLayoutIterations {
			return nil, errors.New("code block layout did not stabilize")
		}

		tagOffsets = make(map[int64]int)
		offset := 0
		for _, instruction := range b.Instructions {
			switch instruction := instruction.(type) {
			case *Operation:
				offset += 1 + pushWidth(instruction.Op)
			case *Tag:
				if _, exists := tagOffsets[instruction.ID]; exists {
					return nil, &SchemaError{Field: "tag", Reason: fmt.Sprintf("tag %d is defined more than once", instruction.ID)}
				}
				tagOffsets[instruction.ID] = offset
				offset++
			case *PushTag, *PushData:
				offset += 1 + width
			case *PushLibraryAddress:
				offset += 1 + 20
			default:
				return nil, &SchemaError{Field: "instruction", Reason: fmt.Sprintf("unknown instruction kind %T", instruction)}
			}
		}

		dataOffsets = make(map[string]int)
		for _, name := range dataNames {
			dataOffsets[name] = offset
			offset += len(dataItems[name])
		}

		// The widest address any symbolic push may need to encode.
		maxAddress := 0
		for _, tagOffset := range tagOffsets {
			if tagOffset > maxAddress {
				maxAddress = tagOffset
			}
		}
		for _, dataOffset := range dataOffsets {
			if dataOffset > maxAddress {
				maxAddress = dataOffset
			}
		}
		if needed := addressWidth(maxAddress); needed > width {
			width = needed
			continue
		}
		break
	}

	// Emission pass under the stabilized layout.
	var bytecode strings.Builder
	listing := make([]string, 0, len(b.Instructions))
	sourceMap := make(SourceMap, 0, len(b.Instructions))
	for i, instruction := range b.Instructions {
		ref := instruction.Ref()
		jumpType := ref.JumpType
		if jumpType == "" {
			jumpType = JumpTypeJumpWithin
		}
		sourceMap = append(sourceMap, SourceMapElement{
			Index:         i,
			Offset:        ref.Begin,
			Length:        ref.End - ref.Begin,
			FileID:        ref.Source,
			JumpType:      jumpType,
			ModifierDepth: ref.ModifierDepth,
		})

		switch instruction := instruction.(type) {
		case *Operation:
			bytecode.WriteString(hex.EncodeToString([]byte{byte(instruction.Op)}))
			if operandWidth := pushWidth(instruction.Op); operandWidth > 0 {
				pushed := instruction.Pushed
				if pushed == nil {
					pushed = uint256.NewInt(0)
				}
				if pushed.ByteLen() > operandWidth {
					return nil, &MalformedBytecodeError{Reason: fmt.Sprintf("%v operand does not fit in %d bytes", instruction.Op, operandWidth)}
				}
				operand := pushed.Bytes32()
				bytecode.WriteString(hex.EncodeToString(operand[32-operandWidth:]))
				listing = append(listing, instruction.Op.String()+" "+pushed.Hex())
			} else {
				listing = append(listing, instruction.Op.String())
			}
		case *Tag:
			bytecode.WriteString(hex.EncodeToString([]byte{byte(vm.JUMPDEST)}))
			listing = append(listing, vm.JUMPDEST.String())
		case *PushTag:
			offset, exists := tagOffsets[instruction.ID]
			if !exists {
				return nil, &UnresolvedTagError{TagID: instruction.ID}
			}
			bytecode.WriteString(encodePush(width, offset))
			listing = append(listing, fmt.Sprintf("%v 0x%x", pushOp(width), offset))
		case *PushData:
			offset := dataOffsets[instruction.Name]
			bytecode.WriteString(encodePush(width, offset))
			listing = append(listing, fmt.Sprintf("%v 0x%x", pushOp(width), offset))
		case *PushLibraryAddress:
			bytecode.WriteString(hex.EncodeToString([]byte{byte(vm.PUSH20)}))
			bytecode.WriteString(LibraryPlaceholder(instruction.Name))
			listing = append(listing, vm.PUSH20.String()+" "+LibraryPlaceholder(instruction.Name))
		}
	}
	for _, name := range dataNames {
		bytecode.WriteString(hex.EncodeToString(dataItems[name]))
	}

	return &AssembleResult{
		BytecodeHex:   bytecode.String(),
		SourceMap:     sourceMap,
		OpcodeListing: strings.Join(listing, " "),
		TagOffsets:    tagOffsets,
		DataOffsets:   dataOffsets,
	}, nil
}

// resolveData collects the data items the block's bytecode will carry: every item the block defines itself, plus
// any item a PushData instruction resolves to in an enclosing scope. Resolution searches the block's own data
// first, then enclosing scopes from innermost outward.
func (b *CodeBlock) resolveData(enclosing []*CodeBlock) (map[string][]byte, error) {
	items := make(map[string][]byte, len(b.Data))
	for name, data := range b.Data {
		items[name] = data
	}
	for _, instruction := range b.Instructions {
		push, ok := instruction.(*PushData)
		if !ok {
			continue
		}
		if _, resolved := items[push.Name]; resolved {
			continue
		}
		found := false
		for i := len(enclosing) - 1; i >= 0; i-- {
			if data, ok := enclosing[i].Data[push.Name]; ok {
				items[push.Name] = data
				found = true
				break
			}
		}
		if !found {
			return nil, &UnresolvedTagError{DataName: push.Name}
		}
	}
	return items, nil
}

// encodePush encodes a push of the given width with a big-endian integer operand, as hex.
func encodePush(width int, value int) string {
	encoded := make([]byte, 1+width)
	encoded[0] = byte(pushOp(width))
	for i := width; i > 0; i-- {
		encoded[i] = byte(value)
		value >>= 8
	}
	return hex.EncodeToString(encoded)
}

// pushOp returns the push opcode with the given immediate width.
func pushOp(width int) vm.OpCode {
	return vm.PUSH1 + vm.OpCode(width-1)
}

// addressWidth returns the number of bytes needed to encode the given block-relative address, at least one.
func addressWidth(address int) int {
	width := 1
	for address > 0xff {
		address >>= 8
		width++
	}
	return width
}
