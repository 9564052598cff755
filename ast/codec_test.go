package ast

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeCommon builds the shared node header used by the sample trees below.
func makeCommon(id int64, nodeType string, src string) nodeCommon {
	return nodeCommon{Id: id, NodeType: nodeType, Src: src}
}

// buildSampleTree constructs the tree for a small token contract: a pragma, one state variable, and one function
// whose body assigns to the state variable and returns it. Ids are pre-assigned so weak references can point at
// concrete targets.
func buildSampleTree() Node {
	stateVariable := &VariableDeclaration{
		nodeCommon:      makeCommon(4, "VariableDeclaration", "40:22:0"),
		Name:            "total",
		StateVariable:   true,
		StorageLocation: "default",
		Visibility:      "internal",
		TypeName: &ElementaryTypeName{
			nodeCommon:       makeCommon(5, "ElementaryTypeName", "40:7:0"),
			Name:             "uint256",
			TypeDescriptions: TypeDescriptions{TypeString: "uint256"},
		},
		TypeDescriptions: TypeDescriptions{TypeString: "uint256"},
	}

	parameter := &VariableDeclaration{
		nodeCommon:      makeCommon(8, "VariableDeclaration", "82:14:0"),
		Name:            "amount",
		StorageLocation: "default",
		Visibility:      "internal",
		TypeName: &ElementaryTypeName{
			nodeCommon:       makeCommon(9, "ElementaryTypeName", "82:7:0"),
			Name:             "uint256",
			TypeDescriptions: TypeDescriptions{TypeString: "uint256"},
		},
		TypeDescriptions: TypeDescriptions{TypeString: "uint256"},
	}

	returnValue := &VariableDeclaration{
		nodeCommon:      makeCommon(11, "VariableDeclaration", "115:7:0"),
		StorageLocation: "default",
		Visibility:      "internal",
		TypeName: &ElementaryTypeName{
			nodeCommon:       makeCommon(12, "ElementaryTypeName", "115:7:0"),
			Name:             "uint256",
			TypeDescriptions: TypeDescriptions{TypeString: "uint256"},
		},
		TypeDescriptions: TypeDescriptions{TypeString: "uint256"},
	}

	body := &Block{
		nodeCommon: makeCommon(13, "Block", "124:70:0"),
		Statements: []Node{
			&ExpressionStatement{
				nodeCommon: makeCommon(14, "ExpressionStatement", "134:15:0"),
				Expression: &Assignment{
					nodeCommon: makeCommon(15, "Assignment", "134:15:0"),
					Operator:   "+=",
					LeftHandSide: &Identifier{
						nodeCommon:            makeCommon(16, "Identifier", "134:5:0"),
						Name:                  "total",
						ReferencedDeclaration: 4,
						TypeDescriptions:      TypeDescriptions{TypeString: "uint256"},
					},
					RightHandSide: &Identifier{
						nodeCommon:            makeCommon(17, "Identifier", "143:6:0"),
						Name:                  "amount",
						ReferencedDeclaration: 8,
						TypeDescriptions:      TypeDescriptions{TypeString: "uint256"},
					},
					TypeDescriptions: TypeDescriptions{TypeString: "uint256"},
				},
			},
			&Return{
				nodeCommon:               makeCommon(18, "Return", "160:12:0"),
				FunctionReturnParameters: 10,
				Expression: &Identifier{
					nodeCommon:            makeCommon(19, "Identifier", "167:5:0"),
					Name:                  "total",
					ReferencedDeclaration: 4,
					TypeDescriptions:      TypeDescriptions{TypeString: "uint256"},
				},
			},
		},
	}

	function := &FunctionDefinition{
		nodeCommon:      makeCommon(6, "FunctionDefinition", "69:125:0"),
		Name:            "add",
		Kind:            "function",
		Visibility:      "public",
		StateMutability: "nonpayable",
		Parameters: &ParameterList{
			nodeCommon: makeCommon(7, "ParameterList", "81:16:0"),
			Parameters: []*VariableDeclaration{parameter},
		},
		ReturnParameters: &ParameterList{
			nodeCommon: makeCommon(10, "ParameterList", "114:9:0"),
			Parameters: []*VariableDeclaration{returnValue},
		},
		Body: body,
	}

	contract := &ContractDefinition{
		nodeCommon:              makeCommon(3, "ContractDefinition", "25:170:0"),
		Name:                    "Token",
		CanonicalName:           "Token",
		ContractKind:            ContractKindContract,
		FullyImplemented:        true,
		LinearizedBaseContracts: []int64{3},
		Nodes:                   []Node{stateVariable, function},
	}

	return &SourceUnit{
		nodeCommon:      makeCommon(1, "SourceUnit", "0:196:0"),
		AbsolutePath:    "Token.sol",
		ExportedSymbols: map[string][]int64{"Token": {3}},
		Nodes: []Node{
			&PragmaDirective{
				nodeCommon: makeCommon(2, "PragmaDirective", "0:24:0"),
				Literals:   []string{"solidity", "^", "0.8", ".24"},
			},
			contract,
		},
	}
}

// TestDocumentRoundTrip ensures that exporting a tree, importing the document, and re-exporting it is
// byte-identical under the same formatting options.
func TestDocumentRoundTrip(t *testing.T) {
	document := Export(buildSampleTree(), []string{"Token.sol"})
	encoded, err := document.Encode(0)
	require.NoError(t, err)

	imported, err := ImportDocument(encoded)
	require.NoError(t, err)

	reencoded, err := imported.Encode(0)
	require.NoError(t, err)
	assert.Equal(t, string(encoded), string(reencoded))
}

// TestDocumentIndentationIsPresentationOnly ensures an indented encoding decodes to the same tree as a compact
// one: importing either and re-encoding compactly yields identical bytes.
func TestDocumentIndentationIsPresentationOnly(t *testing.T) {
	document := Export(buildSampleTree(), []string{"Token.sol"})
	compact, err := document.Encode(0)
	require.NoError(t, err)
	indented, err := document.Encode(4)
	require.NoError(t, err)
	assert.NotEqual(t, string(compact), string(indented))

	imported, err := ImportDocument(indented)
	require.NoError(t, err)
	recompacted, err := imported.Encode(0)
	require.NoError(t, err)
	assert.Equal(t, string(compact), string(recompacted))
}

// TestImportedTreeIsLinked verifies the imported tree's id index and the re-parsed type descriptors.
func TestImportedTreeIsLinked(t *testing.T) {
	document := Export(buildSampleTree(), []string{"Token.sol"})
	encoded, err := document.Encode(0)
	require.NoError(t, err)

	imported, err := ImportDocument(encoded)
	require.NoError(t, err)
	index := imported.Index()

	// The state variable resolves by id and carries its structured type.
	stateVariable, ok := index[4].(*VariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, "total", stateVariable.Name)
	require.NotNil(t, stateVariable.TypeDescriptions.Descriptor())
	assert.Equal(t, "uint256", stateVariable.TypeDescriptions.Descriptor().String())

	// The identifier in the function body weakly references the state variable's id.
	identifier, ok := index[16].(*Identifier)
	require.True(t, ok)
	assert.EqualValues(t, 4, identifier.ReferencedDeclaration)
	assert.Same(t, index[identifier.ReferencedDeclaration], index[4])
}

// TestExportAssignsMissingIDs ensures export assigns fresh unique ids to nodes constructed without one, while
// preserving ids that were already assigned.
func TestExportAssignsMissingIDs(t *testing.T) {
	root := &SourceUnit{
		nodeCommon:   makeCommon(0, "SourceUnit", "0:10:0"),
		AbsolutePath: "Empty.sol",
		Nodes: []Node{
			&PragmaDirective{
				nodeCommon: makeCommon(7, "PragmaDirective", "0:10:0"),
				Literals:   []string{"solidity", "^", "0.8", ".24"},
			},
		},
	}
	Export(root, []string{"Empty.sol"})

	// The pre-assigned id survives and the fresh id is allocated above it.
	assert.EqualValues(t, 7, root.Nodes[0].ID())
	assert.EqualValues(t, 8, root.ID())
}

// TestTupleEmptySlotsSurviveRoundTrip ensures a tuple with omitted components, as an assignment like `(a, ) = f()`
// produces, can be imported, indexed, and re-exported without losing the empty slots.
func TestTupleEmptySlotsSurviveRoundTrip(t *testing.T) {
	imported, err := ImportDocument([]byte(`{
		"formatVersion": "1.0.0",
		"sourceList": ["a.sol"],
		"ast": {
			"id": 1, "nodeType": "SourceUnit", "src": "0:40:0", "absolutePath": "a.sol",
			"nodes": [{
				"id": 2, "nodeType": "ExpressionStatement", "src": "0:20:0",
				"expression": {
					"id": 3, "nodeType": "TupleExpression", "src": "0:20:0", "isInlineArray": false,
					"components": [
						null,
						{"id": 4, "nodeType": "Literal", "src": "10:1:0", "kind": "number", "value": "1", "typeDescriptions": {"typeString": "uint256"}}
					],
					"typeDescriptions": {"typeString": ""}
				}
			}]
		}
	}`))
	require.NoError(t, err)

	// Indexing and id assignment both walk past the empty slot.
	index := imported.Index()
	require.Contains(t, index, int64(4))
	assert.NotContains(t, index, int64(0))

	document := Export(imported.AST, imported.SourceList)
	first, err := document.Encode(0)
	require.NoError(t, err)
	assert.Contains(t, string(first), `"components":[null,`)

	reimported, err := ImportDocument(first)
	require.NoError(t, err)
	second, err := reimported.Encode(0)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

// TestImportRejectsDanglingReference ensures a weak reference to an id that exists nowhere in the document fails
// the import, even though the referencing node itself is well-formed.
func TestImportRejectsDanglingReference(t *testing.T) {
	tree := buildSampleTree()
	index := Export(tree, []string{"Token.sol"}).Index()
	index[16].(*Identifier).ReferencedDeclaration = 999

	encoded, err := (&Document{FormatVersion: CurrentFormatVersion, SourceList: []string{"Token.sol"}, AST: tree}).Encode(0)
	require.NoError(t, err)

	_, err = ImportDocument(encoded)
	assert.Error(t, err)

	var dangling *DanglingReferenceError
	require.ErrorAs(t, err, &dangling)
	assert.EqualValues(t, 999, dangling.ReferencedID)
}

// TestImportRejectsUnknownKind ensures the node kind vocabulary is closed.
func TestImportRejectsUnknownKind(t *testing.T) {
	_, err := ImportDocument([]byte(`{
		"formatVersion": "1.0.0",
		"sourceList": ["a.sol"],
		"ast": {"id": 1, "nodeType": "Bogus", "src": "0:1:0"}
	}`))
	assert.Error(t, err)

	var schema *SchemaError
	require.ErrorAs(t, err, &schema)
	assert.Equal(t, "Bogus", schema.NodeType)
}

// TestImportFormatVersionGate ensures the version gate accepts compatible versions and rejects everything else.
func TestImportFormatVersionGate(t *testing.T) {
	template := `{"formatVersion": %s, "sourceList": ["a.sol"], "ast": {"id": 1, "nodeType": "SourceUnit", "src": "0:1:0", "absolutePath": "a.sol", "nodes": []}}`

	// A compatible older minor version is accepted.
	_, err := ImportDocument([]byte(`{"formatVersion": "1.0.0", "sourceList": ["a.sol"], "ast": {"id": 1, "nodeType": "SourceUnit", "src": "0:1:0", "absolutePath": "a.sol", "nodes": []}}`))
	assert.NoError(t, err)

	rejected := []string{`"2.0.0"`, `"0.9.0"`, `"garbage"`, `""`}
	for _, version := range rejected {
		_, err = ImportDocument([]byte(fmt.Sprintf(template, version)))
		assert.Error(t, err, "expected version %s to be rejected", version)
	}
}

// TestImportRejectsDuplicateIDs ensures node ids must be unique within one document.
func TestImportRejectsDuplicateIDs(t *testing.T) {
	_, err := ImportDocument([]byte(`{
		"formatVersion": "1.0.0",
		"sourceList": ["a.sol"],
		"ast": {
			"id": 1, "nodeType": "SourceUnit", "src": "0:30:0", "absolutePath": "a.sol",
			"nodes": [
				{"id": 2, "nodeType": "PragmaDirective", "src": "0:10:0", "literals": ["solidity"]},
				{"id": 2, "nodeType": "PragmaDirective", "src": "10:10:0", "literals": ["solidity"]}
			]
		}
	}`))
	assert.Error(t, err)

	var inconsistency *InternalInconsistencyError
	require.ErrorAs(t, err, &inconsistency)
	assert.EqualValues(t, 2, inconsistency.NodeID)
}

// TestImportRejectsUntypedDeclaration ensures a declared variable without a type string fails structural
// validation rather than importing as an untyped declaration.
func TestImportRejectsUntypedDeclaration(t *testing.T) {
	_, err := ImportDocument([]byte(`{
		"formatVersion": "1.0.0",
		"sourceList": ["a.sol"],
		"ast": {
			"id": 1, "nodeType": "SourceUnit", "src": "0:40:0", "absolutePath": "a.sol",
			"nodes": [{
				"id": 2, "nodeType": "VariableDeclaration", "src": "0:20:0",
				"name": "total", "stateVariable": true, "storageLocation": "default", "visibility": "internal",
				"typeName": {"id": 3, "nodeType": "ElementaryTypeName", "src": "0:7:0", "name": "uint256", "typeDescriptions": {"typeString": "uint256"}},
				"typeDescriptions": {"typeString": ""}
			}]
		}
	}`))
	assert.Error(t, err)

	var inconsistency *InternalInconsistencyError
	require.ErrorAs(t, err, &inconsistency)
}

// TestImportRejectsMalformedLocations ensures node source locations are validated against the document's source
// list during import.
func TestImportRejectsMalformedLocations(t *testing.T) {
	// The unit index is out of range for a single-entry source list.
	_, err := ImportDocument([]byte(`{
		"formatVersion": "1.0.0",
		"sourceList": ["a.sol"],
		"ast": {"id": 1, "nodeType": "SourceUnit", "src": "0:1:1", "absolutePath": "a.sol", "nodes": []}
	}`))
	assert.Error(t, err)

	var malformed *MalformedLocationError
	require.ErrorAs(t, err, &malformed)

	// The sentinel location is accepted on a synthesized node.
	_, err = ImportDocument([]byte(`{
		"formatVersion": "1.0.0",
		"sourceList": ["a.sol"],
		"ast": {"id": 1, "nodeType": "SourceUnit", "src": "-1:-1:-1", "absolutePath": "a.sol", "nodes": []}
	}`))
	assert.NoError(t, err)
}
