package ast

import "reflect"

// The node catalogue below is a closed set of kinds: the importer rejects any nodeType tag it does not know.
// Every node carries a process-unique id, a source range in its interchange "start:length:unit" form, and its kind
// tag. Children are owned by their parent and serialized under kind-specific field names in a fixed order.
// Cross-references between nodes (e.g. an identifier naming a declaration) are weak references by id, resolved
// through a whole-tree index after import, never by direct ownership.

// Node is the interface implemented by all AST node kinds.
type Node interface {
	// ID returns the process-unique integer id of the node.
	ID() int64

	// NodeKind returns the nodeType tag of the node.
	NodeKind() string

	// SrcRange returns the node's encoded source location string.
	SrcRange() string

	// Children returns the node's owned children in their semantically meaningful order. Nil children are omitted.
	Children() []Node

	// common exposes the shared header for id assignment during export.
	common() *nodeCommon
}

// nodeCommon is the header every node kind embeds. Field order here fixes the leading field order of every
// serialized node entry.
type nodeCommon struct {
	Id       int64  `json:"id"`
	NodeType string `json:"nodeType"`
	Src      string `json:"src"`
}

func (n *nodeCommon) ID() int64 { return n.Id }

func (n *nodeCommon) NodeKind() string { return n.NodeType }

func (n *nodeCommon) SrcRange() string { return n.Src }

func (n *nodeCommon) common() *nodeCommon { return n }

// TypeDescriptions carries the canonical type string attached to expression and declaration nodes. The importer
// re-parses the string into a structured TypeDescriptor but trusts it rather than re-running type inference.
type TypeDescriptions struct {
	TypeString string `json:"typeString"`

	// descriptor is the structured form of TypeString, populated on import.
	descriptor TypeDescriptor
}

// Descriptor returns the structured form of the attached type, or nil when no type string is attached or the node
// was constructed directly rather than imported.
func (t *TypeDescriptions) Descriptor() TypeDescriptor {
	return t.descriptor
}

// ContractKind distinguishes the flavors of a contract definition.
type ContractKind string

const (
	ContractKindContract  ContractKind = "contract"
	ContractKindLibrary   ContractKind = "library"
	ContractKindInterface ContractKind = "interface"
)

// ----------------------------------------------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------------------------------------------

// SourceUnit is the root node of one input text's tree.
type SourceUnit struct {
	nodeCommon
	AbsolutePath    string             `json:"absolutePath"`
	ExportedSymbols map[string][]int64 `json:"exportedSymbols,omitempty"`
	Nodes           []Node             `json:"nodes"`
}

func (n *SourceUnit) Children() []Node { return n.Nodes }

// PragmaDirective records a pragma as its lexed literal parts.
type PragmaDirective struct {
	nodeCommon
	Literals []string `json:"literals"`
}

func (n *PragmaDirective) Children() []Node { return nil }

// ContractDefinition declares a contract, library, or interface.
type ContractDefinition struct {
	nodeCommon
	Name                    string       `json:"name"`
	CanonicalName           string       `json:"canonicalName,omitempty"`
	ContractKind            ContractKind `json:"contractKind"`
	Abstract                bool         `json:"abstract"`
	FullyImplemented        bool         `json:"fullyImplemented"`
	LinearizedBaseContracts []int64      `json:"linearizedBaseContracts,omitempty"`
	Nodes                   []Node       `json:"nodes"`
}

func (n *ContractDefinition) Children() []Node { return n.Nodes }

// StructDefinition declares a user-defined aggregate type.
type StructDefinition struct {
	nodeCommon
	Name          string                 `json:"name"`
	CanonicalName string                 `json:"canonicalName,omitempty"`
	Visibility    string                 `json:"visibility"`
	Members       []*VariableDeclaration `json:"members"`
}

func (n *StructDefinition) Children() []Node {
	children := make([]Node, 0, len(n.Members))
	for _, member := range n.Members {
		children = append(children, member)
	}
	return children
}

// EnumDefinition declares an enumeration.
type EnumDefinition struct {
	nodeCommon
	Name          string       `json:"name"`
	CanonicalName string       `json:"canonicalName,omitempty"`
	Members       []*EnumValue `json:"members"`
}

func (n *EnumDefinition) Children() []Node {
	children := make([]Node, 0, len(n.Members))
	for _, member := range n.Members {
		children = append(children, member)
	}
	return children
}

// EnumValue is one named member of an enumeration.
type EnumValue struct {
	nodeCommon
	Name string `json:"name"`
}

func (n *EnumValue) Children() []Node { return nil }

// EventDefinition declares an event.
type EventDefinition struct {
	nodeCommon
	Name       string         `json:"name"`
	Anonymous  bool           `json:"anonymous"`
	Parameters *ParameterList `json:"parameters"`
}

func (n *EventDefinition) Children() []Node { return nonNil(n.Parameters) }

// VariableDeclaration declares a named value: a state variable, local, parameter, or struct member. A declared
// variable must always carry a non-empty type string.
type VariableDeclaration struct {
	nodeCommon
	Name             string           `json:"name"`
	Constant         bool             `json:"constant"`
	StateVariable    bool             `json:"stateVariable"`
	StorageLocation  string           `json:"storageLocation"`
	Visibility       string           `json:"visibility"`
	TypeName         Node             `json:"typeName"`
	Value            Node             `json:"value,omitempty"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

func (n *VariableDeclaration) Children() []Node { return nonNil(n.TypeName, n.Value) }

// FunctionDefinition declares a function, constructor, fallback, or receive handler.
type FunctionDefinition struct {
	nodeCommon
	Name             string         `json:"name"`
	Kind             string         `json:"kind"`
	Visibility       string         `json:"visibility"`
	StateMutability  string         `json:"stateMutability"`
	Virtual          bool           `json:"virtual"`
	Parameters       *ParameterList `json:"parameters"`
	ReturnParameters *ParameterList `json:"returnParameters"`
	Body             *Block         `json:"body,omitempty"`
}

func (n *FunctionDefinition) Children() []Node { return nonNil(n.Parameters, n.ReturnParameters, n.Body) }

// ModifierDefinition declares a function modifier. Its body uses a PlaceholderStatement where the wrapped function
// body is spliced in.
type ModifierDefinition struct {
	nodeCommon
	Name       string         `json:"name"`
	Visibility string         `json:"visibility"`
	Virtual    bool           `json:"virtual"`
	Parameters *ParameterList `json:"parameters"`
	Body       *Block         `json:"body,omitempty"`
}

func (n *ModifierDefinition) Children() []Node { return nonNil(n.Parameters, n.Body) }

// ParameterList groups the ordered parameters of a function, event, or modifier.
type ParameterList struct {
	nodeCommon
	Parameters []*VariableDeclaration `json:"parameters"`
}

func (n *ParameterList) Children() []Node {
	children := make([]Node, 0, len(n.Parameters))
	for _, parameter := range n.Parameters {
		children = append(children, parameter)
	}
	return children
}

// ----------------------------------------------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------------------------------------------

// Block is a brace-delimited statement sequence.
type Block struct {
	nodeCommon
	Statements []Node `json:"statements"`
}

func (n *Block) Children() []Node { return n.Statements }

// IfStatement is a conditional with an optional else branch.
type IfStatement struct {
	nodeCommon
	Condition Node `json:"condition"`
	TrueBody  Node `json:"trueBody"`
	FalseBody Node `json:"falseBody,omitempty"`
}

func (n *IfStatement) Children() []Node { return nonNil(n.Condition, n.TrueBody, n.FalseBody) }

// ForStatement is a for loop; all three header clauses are optional.
type ForStatement struct {
	nodeCommon
	Initialization Node `json:"initializationExpression,omitempty"`
	Condition      Node `json:"condition,omitempty"`
	LoopExpression Node `json:"loopExpression,omitempty"`
	Body           Node `json:"body"`
}

func (n *ForStatement) Children() []Node {
	return nonNil(n.Initialization, n.Condition, n.LoopExpression, n.Body)
}

// WhileStatement is a while loop.
type WhileStatement struct {
	nodeCommon
	Condition Node `json:"condition"`
	Body      Node `json:"body"`
}

func (n *WhileStatement) Children() []Node { return nonNil(n.Condition, n.Body) }

// Return exits the enclosing function, optionally yielding an expression. FunctionReturnParameters is a weak
// reference to the id of the function's return ParameterList.
type Return struct {
	nodeCommon
	FunctionReturnParameters int64 `json:"functionReturnParameters,omitempty"`
	Expression               Node  `json:"expression,omitempty"`
}

func (n *Return) Children() []Node { return nonNil(n.Expression) }

// ExpressionStatement evaluates an expression for its effects.
type ExpressionStatement struct {
	nodeCommon
	Expression Node `json:"expression"`
}

func (n *ExpressionStatement) Children() []Node { return nonNil(n.Expression) }

// VariableDeclarationStatement declares one or more local variables with an optional initializer.
type VariableDeclarationStatement struct {
	nodeCommon
	Declarations []*VariableDeclaration `json:"declarations"`
	InitialValue Node                   `json:"initialValue,omitempty"`
}

func (n *VariableDeclarationStatement) Children() []Node {
	children := make([]Node, 0, len(n.Declarations)+1)
	for _, declaration := range n.Declarations {
		children = append(children, declaration)
	}
	if n.InitialValue != nil {
		children = append(children, n.InitialValue)
	}
	return children
}

// EmitStatement emits an event.
type EmitStatement struct {
	nodeCommon
	EventCall *FunctionCall `json:"eventCall"`
}

func (n *EmitStatement) Children() []Node { return nonNil(n.EventCall) }

// PlaceholderStatement is the "_" marker within a modifier body.
type PlaceholderStatement struct {
	nodeCommon
}

func (n *PlaceholderStatement) Children() []Node { return nil }

// ----------------------------------------------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------------------------------------------

// Assignment is a (possibly compound) assignment expression.
type Assignment struct {
	nodeCommon
	Operator         string           `json:"operator"`
	LeftHandSide     Node             `json:"leftHandSide"`
	RightHandSide    Node             `json:"rightHandSide"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

func (n *Assignment) Children() []Node { return nonNil(n.LeftHandSide, n.RightHandSide) }

// BinaryOperation applies a binary operator to two operands.
type BinaryOperation struct {
	nodeCommon
	Operator         string           `json:"operator"`
	LeftExpression   Node             `json:"leftExpression"`
	RightExpression  Node             `json:"rightExpression"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

func (n *BinaryOperation) Children() []Node { return nonNil(n.LeftExpression, n.RightExpression) }

// UnaryOperation applies a prefix or postfix unary operator to one operand.
type UnaryOperation struct {
	nodeCommon
	Operator         string           `json:"operator"`
	Prefix           bool             `json:"prefix"`
	SubExpression    Node             `json:"subExpression"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

func (n *UnaryOperation) Children() []Node { return nonNil(n.SubExpression) }

// FunctionCall invokes a function, performs a type conversion, or constructs a struct.
type FunctionCall struct {
	nodeCommon
	Kind             string           `json:"kind"`
	Expression       Node             `json:"expression"`
	Arguments        []Node           `json:"arguments"`
	Names            []string         `json:"names,omitempty"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

func (n *FunctionCall) Children() []Node {
	children := make([]Node, 0, len(n.Arguments)+1)
	if n.Expression != nil {
		children = append(children, n.Expression)
	}
	children = append(children, n.Arguments...)
	return children
}

// MemberAccess selects a member of an expression. ReferencedDeclaration is a weak reference to the declaration the
// member resolves to, when it resolves to one.
type MemberAccess struct {
	nodeCommon
	MemberName            string           `json:"memberName"`
	Expression            Node             `json:"expression"`
	ReferencedDeclaration int64            `json:"referencedDeclaration,omitempty"`
	TypeDescriptions      TypeDescriptions `json:"typeDescriptions"`
}

func (n *MemberAccess) Children() []Node { return nonNil(n.Expression) }

// IndexAccess indexes into an array or mapping.
type IndexAccess struct {
	nodeCommon
	BaseExpression   Node             `json:"baseExpression"`
	IndexExpression  Node             `json:"indexExpression,omitempty"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

func (n *IndexAccess) Children() []Node { return nonNil(n.BaseExpression, n.IndexExpression) }

// Identifier names a declaration. ReferencedDeclaration is a weak reference by id; negative ids denote compiler
// builtins and are not present in the document.
type Identifier struct {
	nodeCommon
	Name                   string           `json:"name"`
	ReferencedDeclaration  int64            `json:"referencedDeclaration"`
	OverloadedDeclarations []int64          `json:"overloadedDeclarations,omitempty"`
	TypeDescriptions       TypeDescriptions `json:"typeDescriptions"`
}

func (n *Identifier) Children() []Node { return nil }

// Literal is a number, string, or boolean constant.
type Literal struct {
	nodeCommon
	Kind             string           `json:"kind"`
	Value            string           `json:"value"`
	HexValue         string           `json:"hexValue,omitempty"`
	Subdenomination  string           `json:"subdenomination,omitempty"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

func (n *Literal) Children() []Node { return nil }

// TupleExpression groups component expressions, or forms an inline array.
type TupleExpression struct {
	nodeCommon
	IsInlineArray    bool             `json:"isInlineArray"`
	Components       []Node           `json:"components"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

// Children omits empty tuple slots: Components preserves them for serialization, but a nil slot is not a node.
func (n *TupleExpression) Children() []Node { return nonNil(n.Components...) }

// ----------------------------------------------------------------------------------------------------------------
// Type names
// ----------------------------------------------------------------------------------------------------------------

// ElementaryTypeName names a built-in type in source.
type ElementaryTypeName struct {
	nodeCommon
	Name             string           `json:"name"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

func (n *ElementaryTypeName) Children() []Node { return nil }

// UserDefinedTypeName names a user-defined type. ReferencedDeclaration is a weak reference to the defining node.
type UserDefinedTypeName struct {
	nodeCommon
	Name                  string           `json:"name"`
	ReferencedDeclaration int64            `json:"referencedDeclaration"`
	TypeDescriptions      TypeDescriptions `json:"typeDescriptions"`
}

func (n *UserDefinedTypeName) Children() []Node { return nil }

// ArrayTypeName names an array type with an optional length expression.
type ArrayTypeName struct {
	nodeCommon
	BaseType         Node             `json:"baseType"`
	Length           Node             `json:"length,omitempty"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

func (n *ArrayTypeName) Children() []Node { return nonNil(n.BaseType, n.Length) }

// Mapping names a mapping type.
type Mapping struct {
	nodeCommon
	KeyType          Node             `json:"keyType"`
	ValueType        Node             `json:"valueType"`
	TypeDescriptions TypeDescriptions `json:"typeDescriptions"`
}

func (n *Mapping) Children() []Node { return nonNil(n.KeyType, n.ValueType) }

// FunctionTypeName names a function type.
type FunctionTypeName struct {
	nodeCommon
	Visibility           string           `json:"visibility"`
	StateMutability      string           `json:"stateMutability"`
	ParameterTypes       *ParameterList   `json:"parameterTypes"`
	ReturnParameterTypes *ParameterList   `json:"returnParameterTypes"`
	TypeDescriptions     TypeDescriptions `json:"typeDescriptions"`
}

func (n *FunctionTypeName) Children() []Node { return nonNil(n.ParameterTypes, n.ReturnParameterTypes) }

// nonNil filters nil entries out of a fixed child list. Concrete pointer fields wrapped into the Node interface
// produce non-nil interfaces holding nil pointers, so both forms are checked.
func nonNil(nodes ...Node) []Node {
	children := make([]Node, 0, len(nodes))
	for _, node := range nodes {
		if node == nil || isNilPointer(node) {
			continue
		}
		children = append(children, node)
	}
	return children
}

func isNilPointer(node Node) bool {
	value := reflect.ValueOf(node)
	return value.Kind() == reflect.Pointer && value.IsNil()
}

// Every kind in the catalogue satisfies Node. Kind-specific fields must not shadow the promoted header methods.
var (
	_ Node = (*SourceUnit)(nil)
	_ Node = (*PragmaDirective)(nil)
	_ Node = (*ContractDefinition)(nil)
	_ Node = (*StructDefinition)(nil)
	_ Node = (*EnumDefinition)(nil)
	_ Node = (*EnumValue)(nil)
	_ Node = (*EventDefinition)(nil)
	_ Node = (*VariableDeclaration)(nil)
	_ Node = (*FunctionDefinition)(nil)
	_ Node = (*ModifierDefinition)(nil)
	_ Node = (*ParameterList)(nil)
	_ Node = (*Block)(nil)
	_ Node = (*IfStatement)(nil)
	_ Node = (*ForStatement)(nil)
	_ Node = (*WhileStatement)(nil)
	_ Node = (*Return)(nil)
	_ Node = (*ExpressionStatement)(nil)
	_ Node = (*VariableDeclarationStatement)(nil)
	_ Node = (*EmitStatement)(nil)
	_ Node = (*PlaceholderStatement)(nil)
	_ Node = (*Assignment)(nil)
	_ Node = (*BinaryOperation)(nil)
	_ Node = (*UnaryOperation)(nil)
	_ Node = (*FunctionCall)(nil)
	_ Node = (*MemberAccess)(nil)
	_ Node = (*IndexAccess)(nil)
	_ Node = (*Identifier)(nil)
	_ Node = (*Literal)(nil)
	_ Node = (*TupleExpression)(nil)
	_ Node = (*ElementaryTypeName)(nil)
	_ Node = (*UserDefinedTypeName)(nil)
	_ Node = (*ArrayTypeName)(nil)
	_ Node = (*Mapping)(nil)
	_ Node = (*FunctionTypeName)(nil)
)
