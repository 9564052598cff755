package asm

import (
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// SourceRef ties an instruction back to the source range it was generated from. Begin and End are byte offsets
// into the referenced source unit; Source is an index into the document's source list, or -1 for
// compiler-generated code with no user source.
type SourceRef struct {
	Begin         int
	End           int
	Source        int
	JumpType      JumpType
	ModifierDepth int
}

// Ref returns the source reference itself. Embedding SourceRef gives every instruction kind this accessor, which
// is what satisfies Instruction.
func (r SourceRef) Ref() SourceRef {
	return r
}

// Instruction is one element of a code block: a concrete operation, a tag defining a jump target, or a symbolic
// push whose value is only known once the block is laid out.
type Instruction interface {
	// Ref returns the source range the instruction was generated from.
	Ref() SourceRef
}

// Operation is a concrete EVM operation. Push operations carry their immediate operand; all other operations have
// a nil operand.
type Operation struct {
	SourceRef

	// Op is the operation's opcode.
	Op vm.OpCode

	// Pushed is the immediate operand for PUSH1 through PUSH32, nil for every other operation. A nil operand on a
	// push operation assembles as zero.
	Pushed *uint256.Int
}

// Tag defines a jump target within its code block. It assembles to a JUMPDEST and records the block-relative byte
// offset that PushTag references to it resolve to. Tag identifiers are scoped to their own code block: a PushTag
// never resolves to a tag of a parent or sibling block.
type Tag struct {
	SourceRef

	ID int64
}

// PushTag pushes the byte offset of the identically-numbered Tag in the same code block. The push width is chosen
// by the assembler's layout pass and is uniform across all symbolic pushes of the block.
type PushTag struct {
	SourceRef

	ID int64
}

// PushData pushes the byte offset of a named data item. The name resolves in the instruction's own code block
// first, then outward through enclosing blocks.
type PushData struct {
	SourceRef

	Name string
}

// PushLibraryAddress pushes the address of a not-yet-linked library. It assembles to a PUSH20 whose operand is a
// deterministic textual placeholder derived from the library name; the placeholder is replaced by a linker after
// assembly, and bytecode containing one cannot be decoded to raw bytes.
type PushLibraryAddress struct {
	SourceRef

	// Name is the fully qualified library name, e.g. "lib/Math.sol:Math".
	Name string
}

// pushWidth returns the immediate operand width in bytes for PUSH1 through PUSH32, and zero for every other
// operation (including PUSH0, which has no immediate).
func pushWidth(op vm.OpCode) int {
	if op >= vm.PUSH1 && op <= vm.PUSH32 {
		return int(op-vm.PUSH1) + 1
	}
	return 0
}
