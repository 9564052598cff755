package asm

import (
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
)

// Item names for symbolic instructions in the interchange form. Concrete operations use their mnemonic instead.
const (
	itemNameTag         = "tag"
	itemNamePush        = "PUSH"
	itemNamePushTag     = "PUSH [tag]"
	itemNamePushData    = "PUSH data"
	itemNamePushLibrary = "PUSHLIB"
)

// Item is the interchange form of one instruction.
type Item struct {
	Begin  int    `json:"begin"`
	End    int    `json:"end"`
	Name   string `json:"name"`
	Source int    `json:"source"`
	Value  string `json:"value,omitempty"`

	// JumpType is omitted for ordinary within-function flow and filled back in on import.
	JumpType      string `json:"jumpType,omitempty"`
	ModifierDepth int    `json:"modifierDepth,omitempty"`
}

// Document is the interchange form of one code block: its instruction stream under ".code" and its nested
// sub-assemblies and raw data under ".data".
type Document struct {
	Code []Item                `json:".code"`
	Data map[string]*DataEntry `json:".data,omitempty"`
}

// DataEntry is one ".data" value: either a raw data item as a hex string, or a nested sub-assembly document.
// Exactly one of the two is set.
type DataEntry struct {
	Hex string
	Sub *Document
}

func (e *DataEntry) MarshalJSON() ([]byte, error) {
	if e.Sub != nil {
		return json.Marshal(e.Sub)
	}
	return json.Marshal(e.Hex)
}

func (e *DataEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &e.Hex)
	}
	e.Sub = new(Document)
	return json.Unmarshal(data, e.Sub)
}

// Encode serializes the document. As with the tree document codec, the indent width is presentation-only. Map
// keys serialize in sorted order, so two encodings of the same block under the same options are byte-identical.
func (d *Document) Encode(indent int) ([]byte, error) {
	if indent <= 0 {
		return json.Marshal(d)
	}
	return json.MarshalIndent(d, "", strings.Repeat(" ", indent))
}

// ExportBlock converts an in-memory code block into its interchange document. The conversion is purely
// structural: no layout runs, so symbolic instructions stay symbolic and re-importing the document recovers an
// equivalent block.
func ExportBlock(block *CodeBlock) *Document {
	document := &Document{Code: make([]Item, 0, len(block.Instructions))}
	for _, instruction := range block.Instructions {
		ref := instruction.Ref()
		item := Item{
			Begin:         ref.Begin,
			End:           ref.End,
			Source:        ref.Source,
			ModifierDepth: ref.ModifierDepth,
		}
		if ref.JumpType != "" && ref.JumpType != JumpTypeJumpWithin {
			item.JumpType = string(ref.JumpType)
		}

		switch instruction := instruction.(type) {
		case *Operation:
			if operandWidth := pushWidth(instruction.Op); operandWidth > 0 {
				pushed := instruction.Pushed
				if pushed == nil {
					pushed = uint256.NewInt(0)
				}
				operand := pushed.Bytes32()
				item.Name = itemNamePush
				item.Value = strings.ToUpper(hex.EncodeToString(operand[32-operandWidth:]))
			} else {
				item.Name = instruction.Op.String()
			}
		case *Tag:
			item.Name = itemNameTag
			item.Value = strconv.FormatInt(instruction.ID, 10)
		case *PushTag:
			item.Name = itemNamePushTag
			item.Value = strconv.FormatInt(instruction.ID, 10)
		case *PushData:
			item.Name = itemNamePushData
			item.Value = instruction.Name
		case *PushLibraryAddress:
			item.Name = itemNamePushLibrary
			item.Value = instruction.Name
		}
		document.Code = append(document.Code, item)
	}

	if len(block.Subs) > 0 || len(block.Data) > 0 {
		document.Data = make(map[string]*DataEntry, len(block.Subs)+len(block.Data))
		for key, sub := range block.Subs {
			document.Data[key] = &DataEntry{Sub: ExportBlock(sub)}
		}
		for key, data := range block.Data {
			document.Data[key] = &DataEntry{Hex: strings.ToUpper(hex.EncodeToString(data))}
		}
	}
	return document
}

// runtimeSubKey is the ".data" key under which creation code carries its runtime sub-assembly.
const runtimeSubKey = "0"

// ContractArtifacts bundles every assembly-derived view of one contract. All fields derive from the same layout
// of the same block, so bytecode offsets, position map entries, and the opcode listing agree with each other.
type ContractArtifacts struct {
	AssemblyTree     *Document `json:"assembly-tree,omitempty"`
	Bytecode         string    `json:"bytecode,omitempty"`
	RuntimeBytecode  string    `json:"runtime-bytecode,omitempty"`
	OpcodeListing    string    `json:"opcode-listing,omitempty"`
	SourceMap        string    `json:"position-map,omitempty"`
	RuntimeSourceMap string    `json:"runtime-position-map,omitempty"`
}

// Encode serializes the artifact bundle, with the same presentation-only indent option as Document.Encode.
func (a *ContractArtifacts) Encode(indent int) ([]byte, error) {
	if indent <= 0 {
		return json.Marshal(a)
	}
	return json.MarshalIndent(a, "", strings.Repeat(" ", indent))
}

// ExportContract assembles a contract's creation block and derives the full artifact bundle from it. Contracts
// which produced no assembly at all, e.g. source units holding only free functions, yield a nil bundle with no
// error so callers can skip them. The runtime sub-assembly, when present under the conventional "0" key, is
// assembled within the creation scope so its data references resolve.
func ExportContract(creation *CodeBlock) (*ContractArtifacts, error) {
	if creation == nil || (len(creation.Instructions) == 0 && len(creation.Subs) == 0 && len(creation.Data) == 0) {
		return nil, nil
	}

	assembled, err := creation.Assemble()
	if err != nil {
		return nil, err
	}
	artifacts := &ContractArtifacts{
		AssemblyTree:  ExportBlock(creation),
		Bytecode:      assembled.BytecodeHex,
		OpcodeListing: assembled.OpcodeListing,
		SourceMap:     assembled.SourceMap.Encode(),
	}

	if runtime := creation.Subs[runtimeSubKey]; runtime != nil {
		runtimeAssembled, err := runtime.assembleIn([]*CodeBlock{creation})
		if err != nil {
			return nil, err
		}
		artifacts.RuntimeBytecode = runtimeAssembled.BytecodeHex
		artifacts.RuntimeSourceMap = runtimeAssembled.SourceMap.Encode()
	}
	return artifacts, nil
}
