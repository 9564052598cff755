package asm

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/holiman/uint256"
)

// ImportDocument parses an assembly interchange document back into an in-memory code block. The importer is
// strict: unknown instruction names, malformed values, and unrecognized jump types are schema errors rather than
// best-effort guesses, so a block that imports cleanly always re-exports to an equivalent document.
func ImportDocument(data []byte) (*CodeBlock, error) {
	document := new(Document)
	if err := json.Unmarshal(data, document); err != nil {
		return nil, &SchemaError{Reason: err.Error()}
	}
	return importBlock(document)
}

func importBlock(document *Document) (*CodeBlock, error) {
	block := new(CodeBlock)
	if document.Code != nil {
		block.Instructions = make([]Instruction, 0, len(document.Code))
	}
	for i, item := range document.Code {
		instruction, err := importItem(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		block.Instructions = append(block.Instructions, instruction)
	}

	for key, entry := range document.Data {
		if entry == nil {
			return nil, &SchemaError{Field: key, Reason: "data entry is null"}
		}
		if entry.Sub != nil {
			sub, err := importBlock(entry.Sub)
			if err != nil {
				return nil, fmt.Errorf("sub-assembly '%s': %w", key, err)
			}
			if block.Subs == nil {
				block.Subs = make(map[string]*CodeBlock)
			}
			block.Subs[key] = sub
			continue
		}
		decoded, err := hex.DecodeString(entry.Hex)
		if err != nil {
			return nil, &MalformedBytecodeError{Reason: fmt.Sprintf("data entry '%s': %v", key, err)}
		}
		if block.Data == nil {
			block.Data = make(map[string][]byte)
		}
		block.Data[key] = decoded
	}
	return block, nil
}

// importItem converts one interchange item into its instruction form.
func importItem(item Item) (Instruction, error) {
	if item.Name == "" {
		return nil, &SchemaError{Field: "name", Reason: "instruction has no name"}
	}

	ref := SourceRef{
		Begin:         item.Begin,
		End:           item.End,
		Source:        item.Source,
		JumpType:      JumpTypeJumpWithin,
		ModifierDepth: item.ModifierDepth,
	}
	if item.JumpType != "" {
		jumpType := JumpType(item.JumpType)
		if !jumpType.valid() {
			return nil, &SchemaError{Field: "jumpType", Reason: "unknown jump type '" + item.JumpType + "'"}
		}
		ref.JumpType = jumpType
	}

	switch item.Name {
	case itemNameTag:
		id, err := importTagID(item.Value)
		if err != nil {
			return nil, err
		}
		return &Tag{SourceRef: ref, ID: id}, nil

	case itemNamePushTag:
		id, err := importTagID(item.Value)
		if err != nil {
			return nil, err
		}
		return &PushTag{SourceRef: ref, ID: id}, nil

	case itemNamePushData:
		if item.Value == "" {
			return nil, &SchemaError{Field: itemNamePushData, Reason: "data reference has no value"}
		}
		return &PushData{SourceRef: ref, Name: item.Value}, nil

	case itemNamePushLibrary:
		if item.Value == "" {
			return nil, &SchemaError{Field: itemNamePushLibrary, Reason: "library reference has no value"}
		}
		return &PushLibraryAddress{SourceRef: ref, Name: item.Value}, nil

	case itemNamePush:
		// The operand is zero-padded to the push width on export, so its byte length recovers the exact
		// operation this push assembles to.
		operand, err := hex.DecodeString(item.Value)
		if err != nil {
			return nil, &SchemaError{Field: itemNamePush, Reason: "non-hex operand '" + item.Value + "'"}
		}
		if len(operand) < 1 || len(operand) > 32 {
			return nil, &SchemaError{Field: itemNamePush, Reason: fmt.Sprintf("operand is %d bytes, expected 1 to 32", len(operand))}
		}
		return &Operation{
			SourceRef: ref,
			Op:        pushOp(len(operand)),
			Pushed:    new(uint256.Int).SetBytes(operand),
		}, nil

	default:
		op := vm.StringToOp(item.Name)
		if op.String() != item.Name {
			return nil, &SchemaError{Field: "name", Reason: "unknown instruction '" + item.Name + "'"}
		}
		if pushWidth(op) > 0 {
			return nil, &SchemaError{Field: "name", Reason: "sized push '" + item.Name + "' must use the PUSH item form"}
		}
		return &Operation{SourceRef: ref, Op: op}, nil
	}
}

// importTagID parses a tag identifier value, shared by tag definitions and tag references.
func importTagID(value string) (int64, error) {
	if value == "" {
		return 0, &SchemaError{Field: itemNameTag, Reason: "tag has no identifier"}
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id < 0 {
		return 0, &SchemaError{Field: itemNameTag, Reason: "invalid tag identifier '" + value + "'"}
	}
	return id, nil
}
