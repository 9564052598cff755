package ast

import (
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver"
)

// ImportDocument validates an interchange document against the node schema and reconstructs the fully linked
// internal tree. It either returns a complete document or fails with one of the codec error types; no partial tree
// is ever returned. The import runs in two passes: a single top-down pass materializes each node and records it in
// an id index, then weak references are resolved against the completed index, which permits forward references
// within the document. Embedded type strings are re-parsed but trusted; full type inference is not re-run.
func ImportDocument(data []byte) (*Document, error) {
	var envelope struct {
		FormatVersion string          `json:"formatVersion"`
		SourceList    []string        `json:"sourceList"`
		AST           json.RawMessage `json:"ast"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("document is not valid JSON: %v", err)}
	}
	if envelope.FormatVersion == "" {
		return nil, &SchemaError{Field: "formatVersion", Reason: "missing required field"}
	}
	version, err := semver.NewVersion(envelope.FormatVersion)
	if err != nil {
		return nil, &SchemaError{Field: "formatVersion", Reason: fmt.Sprintf("'%s' is not a semantic version", envelope.FormatVersion)}
	}
	supported, err := semver.NewConstraint(SupportedFormatVersions)
	if err != nil {
		return nil, err
	}
	if !supported.Check(version) {
		return nil, &SchemaError{Field: "formatVersion", Reason: fmt.Sprintf("version %s is not supported (need %s)", envelope.FormatVersion, SupportedFormatVersions)}
	}
	if len(envelope.AST) == 0 {
		return nil, &SchemaError{Field: "ast", Reason: "missing required field"}
	}

	imp := &importer{
		unitCount: len(envelope.SourceList),
		index:     make(map[int64]Node),
	}
	root, err := imp.node(envelope.AST)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, &SchemaError{Field: "ast", Reason: "document root must not be null"}
	}

	// Second pass: every weak reference must resolve against the whole-tree index.
	for _, ref := range imp.weakRefs {
		if _, ok := imp.index[ref.target]; !ok {
			return nil, &DanglingReferenceError{NodeID: ref.source, ReferencedID: ref.target}
		}
	}

	return &Document{
		FormatVersion: envelope.FormatVersion,
		SourceList:    envelope.SourceList,
		AST:           root,
	}, nil
}

// Index builds the whole-tree id lookup for a document's tree. Weak references are resolved by looking ids up here
// rather than by direct links between nodes.
func (d *Document) Index() map[int64]Node {
	index := make(map[int64]Node)
	var walk func(node Node)
	walk = func(node Node) {
		index[node.ID()] = node
		for _, child := range node.Children() {
			walk(child)
		}
	}
	if d.AST != nil {
		walk(d.AST)
	}
	return index
}

// importer carries the state of one import: the source unit count locations are validated against, the id index
// built during the materialization pass, and the weak references deferred to the resolution pass.
type importer struct {
	unitCount int
	index     map[int64]Node
	weakRefs  []weakReference
}

// weakReference records that node `source` refers to declaration id `target`.
type weakReference struct {
	source int64
	target int64
}

// reference defers a weak reference for resolution once the full index exists. Negative ids denote compiler
// builtins which never appear in a document, and zero means "no reference"; neither is recorded.
func (imp *importer) reference(source int64, target int64) {
	if target > 0 {
		imp.weakRefs = append(imp.weakRefs, weakReference{source: source, target: target})
	}
}

// node materializes a single node entry: it validates the shared header (id, kind tag, source location), dispatches
// on the kind tag, and records the result in the id index. A null or absent entry materializes as nil.
func (imp *importer) node(raw json.RawMessage) (Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var header struct {
		Id       int64  `json:"id"`
		NodeType string `json:"nodeType"`
		Src      string `json:"src"`
	}
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("node entry is not an object: %v", err)}
	}
	if header.NodeType == "" {
		return nil, &SchemaError{Reason: "node entry is missing its nodeType tag"}
	}
	if header.Id <= 0 {
		return nil, &InternalInconsistencyError{NodeID: header.Id, Reason: "node id must be a positive integer"}
	}
	if header.Src == "" {
		return nil, &SchemaError{NodeType: header.NodeType, Field: "src", Reason: "missing required field"}
	}
	if _, err := DecodeSourceLocation(header.Src, imp.unitCount); err != nil {
		return nil, err
	}

	node, err := imp.decodeKind(header.NodeType, header.Id, raw)
	if err != nil {
		return nil, err
	}

	// Ids are process-unique and never reused within one document.
	if _, exists := imp.index[header.Id]; exists {
		return nil, &InternalInconsistencyError{NodeID: header.Id, Reason: "node id is used more than once"}
	}
	imp.index[header.Id] = node
	return node, nil
}

// decodeKind materializes the kind-specific portion of a node entry. The kind vocabulary is closed: an unknown tag
// is a hard import error, never silently ignored.
func (imp *importer) decodeKind(kind string, id int64, raw json.RawMessage) (Node, error) {
	switch kind {
	case "SourceUnit":
		node := new(SourceUnit)
		aux := struct {
			*SourceUnit
			Nodes []json.RawMessage `json:"nodes"`
		}{SourceUnit: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		children, err := imp.nodeList(aux.Nodes, false)
		if err != nil {
			return nil, err
		}
		node.Nodes = children
		return node, nil

	case "PragmaDirective":
		node := new(PragmaDirective)
		if err := imp.unmarshal(raw, kind, node); err != nil {
			return nil, err
		}
		if len(node.Literals) == 0 {
			return nil, &SchemaError{NodeType: kind, Field: "literals", Reason: "missing required field"}
		}
		return node, nil

	case "ContractDefinition":
		node := new(ContractDefinition)
		aux := struct {
			*ContractDefinition
			Nodes []json.RawMessage `json:"nodes"`
		}{ContractDefinition: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		switch node.ContractKind {
		case ContractKindContract, ContractKindLibrary, ContractKindInterface:
		default:
			return nil, &SchemaError{NodeType: kind, Field: "contractKind", Reason: fmt.Sprintf("unknown contract kind '%s'", node.ContractKind)}
		}
		for _, base := range node.LinearizedBaseContracts {
			imp.reference(id, base)
		}
		children, err := imp.nodeList(aux.Nodes, false)
		if err != nil {
			return nil, err
		}
		node.Nodes = children
		return node, nil

	case "StructDefinition":
		node := new(StructDefinition)
		aux := struct {
			*StructDefinition
			Members []json.RawMessage `json:"members"`
		}{StructDefinition: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		members, err := imp.variableList(aux.Members, kind)
		if err != nil {
			return nil, err
		}
		node.Members = members
		return node, nil

	case "EnumDefinition":
		node := new(EnumDefinition)
		aux := struct {
			*EnumDefinition
			Members []json.RawMessage `json:"members"`
		}{EnumDefinition: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		for _, rawMember := range aux.Members {
			member, err := imp.node(rawMember)
			if err != nil {
				return nil, err
			}
			value, ok := member.(*EnumValue)
			if !ok {
				return nil, &InternalInconsistencyError{NodeID: id, Reason: "enum members must be EnumValue nodes"}
			}
			node.Members = append(node.Members, value)
		}
		if len(node.Members) == 0 {
			return nil, &InternalInconsistencyError{NodeID: id, Reason: "enum defines no members"}
		}
		return node, nil

	case "EnumValue":
		node := new(EnumValue)
		if err := imp.unmarshal(raw, kind, node); err != nil {
			return nil, err
		}
		if node.Name == "" {
			return nil, &SchemaError{NodeType: kind, Field: "name", Reason: "missing required field"}
		}
		return node, nil

	case "EventDefinition":
		node := new(EventDefinition)
		aux := struct {
			*EventDefinition
			Parameters json.RawMessage `json:"parameters"`
		}{EventDefinition: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		parameters, err := imp.parameterList(aux.Parameters, kind, "parameters", true)
		if err != nil {
			return nil, err
		}
		node.Parameters = parameters
		return node, nil

	case "VariableDeclaration":
		node := new(VariableDeclaration)
		aux := struct {
			*VariableDeclaration
			TypeName json.RawMessage `json:"typeName"`
			Value    json.RawMessage `json:"value"`
		}{VariableDeclaration: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		typeName, err := imp.node(aux.TypeName)
		if err != nil {
			return nil, err
		}
		if typeName == nil {
			return nil, &InternalInconsistencyError{NodeID: id, Reason: "declared variable carries no type name"}
		}
		node.TypeName = typeName
		node.Value, err = imp.node(aux.Value)
		if err != nil {
			return nil, err
		}
		// A declared variable must carry a non-empty type; this is the structural check that stands in for
		// re-running type inference.
		if err := imp.parseTypeString(&node.TypeDescriptions, id, true); err != nil {
			return nil, err
		}
		return node, nil

	case "FunctionDefinition":
		node := new(FunctionDefinition)
		aux := struct {
			*FunctionDefinition
			Parameters       json.RawMessage `json:"parameters"`
			ReturnParameters json.RawMessage `json:"returnParameters"`
			Body             json.RawMessage `json:"body"`
		}{FunctionDefinition: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		switch node.Kind {
		case "function", "constructor", "fallback", "receive":
		default:
			return nil, &SchemaError{NodeType: kind, Field: "kind", Reason: fmt.Sprintf("unknown function kind '%s'", node.Kind)}
		}
		var err error
		if node.Parameters, err = imp.parameterList(aux.Parameters, kind, "parameters", true); err != nil {
			return nil, err
		}
		if node.ReturnParameters, err = imp.parameterList(aux.ReturnParameters, kind, "returnParameters", true); err != nil {
			return nil, err
		}
		if node.Body, err = imp.block(aux.Body, kind, false); err != nil {
			return nil, err
		}
		return node, nil

	case "ModifierDefinition":
		node := new(ModifierDefinition)
		aux := struct {
			*ModifierDefinition
			Parameters json.RawMessage `json:"parameters"`
			Body       json.RawMessage `json:"body"`
		}{ModifierDefinition: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		var err error
		if node.Parameters, err = imp.parameterList(aux.Parameters, kind, "parameters", true); err != nil {
			return nil, err
		}
		if node.Body, err = imp.block(aux.Body, kind, false); err != nil {
			return nil, err
		}
		return node, nil

	case "ParameterList":
		node := new(ParameterList)
		aux := struct {
			*ParameterList
			Parameters []json.RawMessage `json:"parameters"`
		}{ParameterList: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		parameters, err := imp.variableList(aux.Parameters, kind)
		if err != nil {
			return nil, err
		}
		node.Parameters = parameters
		return node, nil

	case "Block":
		node := new(Block)
		aux := struct {
			*Block
			Statements []json.RawMessage `json:"statements"`
		}{Block: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		statements, err := imp.nodeList(aux.Statements, false)
		if err != nil {
			return nil, err
		}
		node.Statements = statements
		return node, nil

	case "IfStatement":
		node := new(IfStatement)
		aux := struct {
			*IfStatement
			Condition json.RawMessage `json:"condition"`
			TrueBody  json.RawMessage `json:"trueBody"`
			FalseBody json.RawMessage `json:"falseBody"`
		}{IfStatement: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		var err error
		if node.Condition, err = imp.requiredNode(aux.Condition, kind, "condition", id); err != nil {
			return nil, err
		}
		if node.TrueBody, err = imp.requiredNode(aux.TrueBody, kind, "trueBody", id); err != nil {
			return nil, err
		}
		if node.FalseBody, err = imp.node(aux.FalseBody); err != nil {
			return nil, err
		}
		return node, nil

	case "ForStatement":
		node := new(ForStatement)
		aux := struct {
			*ForStatement
			Initialization json.RawMessage `json:"initializationExpression"`
			Condition      json.RawMessage `json:"condition"`
			LoopExpression json.RawMessage `json:"loopExpression"`
			Body           json.RawMessage `json:"body"`
		}{ForStatement: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		var err error
		if node.Initialization, err = imp.node(aux.Initialization); err != nil {
			return nil, err
		}
		if node.Condition, err = imp.node(aux.Condition); err != nil {
			return nil, err
		}
		if node.LoopExpression, err = imp.node(aux.LoopExpression); err != nil {
			return nil, err
		}
		if node.Body, err = imp.requiredNode(aux.Body, kind, "body", id); err != nil {
			return nil, err
		}
		return node, nil

	case "WhileStatement":
		node := new(WhileStatement)
		aux := struct {
			*WhileStatement
			Condition json.RawMessage `json:"condition"`
			Body      json.RawMessage `json:"body"`
		}{WhileStatement: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		var err error
		if node.Condition, err = imp.requiredNode(aux.Condition, kind, "condition", id); err != nil {
			return nil, err
		}
		if node.Body, err = imp.requiredNode(aux.Body, kind, "body", id); err != nil {
			return nil, err
		}
		return node, nil

	case "Return":
		node := new(Return)
		aux := struct {
			*Return
			Expression json.RawMessage `json:"expression"`
		}{Return: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		var err error
		if node.Expression, err = imp.node(aux.Expression); err != nil {
			return nil, err
		}
		imp.reference(id, node.FunctionReturnParameters)
		return node, nil

	case "ExpressionStatement":
		node := new(ExpressionStatement)
		aux := struct {
			*ExpressionStatement
			Expression json.RawMessage `json:"expression"`
		}{ExpressionStatement: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		var err error
		if node.Expression, err = imp.requiredNode(aux.Expression, kind, "expression", id); err != nil {
			return nil, err
		}
		return node, nil

	case "VariableDeclarationStatement":
		node := new(VariableDeclarationStatement)
		aux := struct {
			*VariableDeclarationStatement
			Declarations []json.RawMessage `json:"declarations"`
			InitialValue json.RawMessage   `json:"initialValue"`
		}{VariableDeclarationStatement: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		declarations, err := imp.variableList(aux.Declarations, kind)
		if err != nil {
			return nil, err
		}
		if len(declarations) == 0 {
			return nil, &InternalInconsistencyError{NodeID: id, Reason: "statement declares no variables"}
		}
		node.Declarations = declarations
		if node.InitialValue, err = imp.node(aux.InitialValue); err != nil {
			return nil, err
		}
		return node, nil

	case "EmitStatement":
		node := new(EmitStatement)
		aux := struct {
			*EmitStatement
			EventCall json.RawMessage `json:"eventCall"`
		}{EmitStatement: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		call, err := imp.requiredNode(aux.EventCall, kind, "eventCall", id)
		if err != nil {
			return nil, err
		}
		functionCall, ok := call.(*FunctionCall)
		if !ok {
			return nil, &InternalInconsistencyError{NodeID: id, Reason: "emitted event must be a FunctionCall node"}
		}
		node.EventCall = functionCall
		return node, nil

	case "PlaceholderStatement":
		node := new(PlaceholderStatement)
		if err := imp.unmarshal(raw, kind, node); err != nil {
			return nil, err
		}
		return node, nil

	case "Assignment":
		node := new(Assignment)
		aux := struct {
			*Assignment
			LeftHandSide  json.RawMessage `json:"leftHandSide"`
			RightHandSide json.RawMessage `json:"rightHandSide"`
		}{Assignment: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		if node.Operator == "" {
			return nil, &SchemaError{NodeType: kind, Field: "operator", Reason: "missing required field"}
		}
		var err error
		if node.LeftHandSide, err = imp.requiredNode(aux.LeftHandSide, kind, "leftHandSide", id); err != nil {
			return nil, err
		}
		if node.RightHandSide, err = imp.requiredNode(aux.RightHandSide, kind, "rightHandSide", id); err != nil {
			return nil, err
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "BinaryOperation":
		node := new(BinaryOperation)
		aux := struct {
			*BinaryOperation
			LeftExpression  json.RawMessage `json:"leftExpression"`
			RightExpression json.RawMessage `json:"rightExpression"`
		}{BinaryOperation: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		if node.Operator == "" {
			return nil, &SchemaError{NodeType: kind, Field: "operator", Reason: "missing required field"}
		}
		var err error
		if node.LeftExpression, err = imp.requiredNode(aux.LeftExpression, kind, "leftExpression", id); err != nil {
			return nil, err
		}
		if node.RightExpression, err = imp.requiredNode(aux.RightExpression, kind, "rightExpression", id); err != nil {
			return nil, err
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "UnaryOperation":
		node := new(UnaryOperation)
		aux := struct {
			*UnaryOperation
			SubExpression json.RawMessage `json:"subExpression"`
		}{UnaryOperation: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		if node.Operator == "" {
			return nil, &SchemaError{NodeType: kind, Field: "operator", Reason: "missing required field"}
		}
		var err error
		if node.SubExpression, err = imp.requiredNode(aux.SubExpression, kind, "subExpression", id); err != nil {
			return nil, err
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "FunctionCall":
		node := new(FunctionCall)
		aux := struct {
			*FunctionCall
			Expression json.RawMessage   `json:"expression"`
			Arguments  []json.RawMessage `json:"arguments"`
		}{FunctionCall: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		switch node.Kind {
		case "functionCall", "typeConversion", "structConstructorCall":
		default:
			return nil, &SchemaError{NodeType: kind, Field: "kind", Reason: fmt.Sprintf("unknown call kind '%s'", node.Kind)}
		}
		var err error
		if node.Expression, err = imp.requiredNode(aux.Expression, kind, "expression", id); err != nil {
			return nil, err
		}
		if node.Arguments, err = imp.nodeList(aux.Arguments, false); err != nil {
			return nil, err
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "MemberAccess":
		node := new(MemberAccess)
		aux := struct {
			*MemberAccess
			Expression json.RawMessage `json:"expression"`
		}{MemberAccess: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		if node.MemberName == "" {
			return nil, &SchemaError{NodeType: kind, Field: "memberName", Reason: "missing required field"}
		}
		var err error
		if node.Expression, err = imp.requiredNode(aux.Expression, kind, "expression", id); err != nil {
			return nil, err
		}
		imp.reference(id, node.ReferencedDeclaration)
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "IndexAccess":
		node := new(IndexAccess)
		aux := struct {
			*IndexAccess
			BaseExpression  json.RawMessage `json:"baseExpression"`
			IndexExpression json.RawMessage `json:"indexExpression"`
		}{IndexAccess: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		var err error
		if node.BaseExpression, err = imp.requiredNode(aux.BaseExpression, kind, "baseExpression", id); err != nil {
			return nil, err
		}
		if node.IndexExpression, err = imp.node(aux.IndexExpression); err != nil {
			return nil, err
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "Identifier":
		node := new(Identifier)
		if err := imp.unmarshal(raw, kind, node); err != nil {
			return nil, err
		}
		if node.Name == "" {
			return nil, &SchemaError{NodeType: kind, Field: "name", Reason: "missing required field"}
		}
		imp.reference(id, node.ReferencedDeclaration)
		for _, overload := range node.OverloadedDeclarations {
			imp.reference(id, overload)
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "Literal":
		node := new(Literal)
		if err := imp.unmarshal(raw, kind, node); err != nil {
			return nil, err
		}
		switch node.Kind {
		case "number", "string", "bool", "hexString", "unicodeString":
		default:
			return nil, &SchemaError{NodeType: kind, Field: "kind", Reason: fmt.Sprintf("unknown literal kind '%s'", node.Kind)}
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "TupleExpression":
		node := new(TupleExpression)
		aux := struct {
			*TupleExpression
			Components []json.RawMessage `json:"components"`
		}{TupleExpression: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		// Tuple components may legitimately contain empty slots.
		components, err := imp.nodeList(aux.Components, true)
		if err != nil {
			return nil, err
		}
		node.Components = components
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "ElementaryTypeName":
		node := new(ElementaryTypeName)
		if err := imp.unmarshal(raw, kind, node); err != nil {
			return nil, err
		}
		if node.Name == "" {
			return nil, &SchemaError{NodeType: kind, Field: "name", Reason: "missing required field"}
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "UserDefinedTypeName":
		node := new(UserDefinedTypeName)
		if err := imp.unmarshal(raw, kind, node); err != nil {
			return nil, err
		}
		if node.Name == "" {
			return nil, &SchemaError{NodeType: kind, Field: "name", Reason: "missing required field"}
		}
		imp.reference(id, node.ReferencedDeclaration)
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "ArrayTypeName":
		node := new(ArrayTypeName)
		aux := struct {
			*ArrayTypeName
			BaseType json.RawMessage `json:"baseType"`
			Length   json.RawMessage `json:"length"`
		}{ArrayTypeName: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		var err error
		if node.BaseType, err = imp.requiredNode(aux.BaseType, kind, "baseType", id); err != nil {
			return nil, err
		}
		if node.Length, err = imp.node(aux.Length); err != nil {
			return nil, err
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "Mapping":
		node := new(Mapping)
		aux := struct {
			*Mapping
			KeyType   json.RawMessage `json:"keyType"`
			ValueType json.RawMessage `json:"valueType"`
		}{Mapping: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		var err error
		if node.KeyType, err = imp.requiredNode(aux.KeyType, kind, "keyType", id); err != nil {
			return nil, err
		}
		if node.ValueType, err = imp.requiredNode(aux.ValueType, kind, "valueType", id); err != nil {
			return nil, err
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	case "FunctionTypeName":
		node := new(FunctionTypeName)
		aux := struct {
			*FunctionTypeName
			ParameterTypes       json.RawMessage `json:"parameterTypes"`
			ReturnParameterTypes json.RawMessage `json:"returnParameterTypes"`
		}{FunctionTypeName: node}
		if err := imp.unmarshal(raw, kind, &aux); err != nil {
			return nil, err
		}
		var err error
		if node.ParameterTypes, err = imp.parameterList(aux.ParameterTypes, kind, "parameterTypes", true); err != nil {
			return nil, err
		}
		if node.ReturnParameterTypes, err = imp.parameterList(aux.ReturnParameterTypes, kind, "returnParameterTypes", true); err != nil {
			return nil, err
		}
		if err := imp.parseTypeString(&node.TypeDescriptions, id, false); err != nil {
			return nil, err
		}
		return node, nil

	default:
		return nil, &SchemaError{NodeType: kind, Reason: "unknown node kind"}
	}
}

// unmarshal decodes a raw node entry into a concrete node struct, converting decoding failures to SchemaErrors.
func (imp *importer) unmarshal(raw json.RawMessage, kind string, out any) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return &SchemaError{NodeType: kind, Reason: err.Error()}
	}
	return nil
}

// requiredNode materializes a child that the parent kind cannot structurally omit.
func (imp *importer) requiredNode(raw json.RawMessage, kind string, field string, id int64) (Node, error) {
	node, err := imp.node(raw)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, &InternalInconsistencyError{NodeID: id, Reason: fmt.Sprintf("%s is missing its required '%s' child", kind, field)}
	}
	return node, nil
}

// nodeList materializes an ordered child list, preserving the distinction between an absent list and an empty one.
// Null entries are rejected unless allowNull is set (tuple components may contain empty slots).
func (imp *importer) nodeList(raws []json.RawMessage, allowNull bool) ([]Node, error) {
	if raws == nil {
		return nil, nil
	}
	nodes := make([]Node, 0, len(raws))
	for _, raw := range raws {
		node, err := imp.node(raw)
		if err != nil {
			return nil, err
		}
		if node == nil && !allowNull {
			return nil, &SchemaError{Reason: "unexpected null entry in node list"}
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// variableList materializes a child list whose members must all be VariableDeclaration nodes.
func (imp *importer) variableList(raws []json.RawMessage, parent string) ([]*VariableDeclaration, error) {
	if raws == nil {
		return nil, nil
	}
	declarations := make([]*VariableDeclaration, 0, len(raws))
	for _, raw := range raws {
		node, err := imp.node(raw)
		if err != nil {
			return nil, err
		}
		declaration, ok := node.(*VariableDeclaration)
		if !ok || node == nil {
			return nil, &SchemaError{NodeType: parent, Reason: "expected a list of VariableDeclaration nodes"}
		}
		declarations = append(declarations, declaration)
	}
	return declarations, nil
}

// parameterList materializes a child that must be a ParameterList node.
func (imp *importer) parameterList(raw json.RawMessage, parent string, field string, required bool) (*ParameterList, error) {
	node, err := imp.node(raw)
	if err != nil {
		return nil, err
	}
	if node == nil {
		if required {
			return nil, &SchemaError{NodeType: parent, Field: field, Reason: "missing required field"}
		}
		return nil, nil
	}
	list, ok := node.(*ParameterList)
	if !ok {
		return nil, &InternalInconsistencyError{NodeID: node.ID(), Reason: fmt.Sprintf("%s field '%s' must be a ParameterList node", parent, field)}
	}
	return list, nil
}

// block materializes a child that must be a Block node.
func (imp *importer) block(raw json.RawMessage, parent string, required bool) (*Block, error) {
	node, err := imp.node(raw)
	if err != nil {
		return nil, err
	}
	if node == nil {
		if required {
			return nil, &SchemaError{NodeType: parent, Field: "body", Reason: "missing required field"}
		}
		return nil, nil
	}
	body, ok := node.(*Block)
	if !ok {
		return nil, &InternalInconsistencyError{NodeID: node.ID(), Reason: fmt.Sprintf("%s body must be a Block node", parent)}
	}
	return body, nil
}

// parseTypeString re-parses a node's embedded canonical type string into its structured form. When required is set,
// an empty type string is a structural invariant violation rather than an accepted omission.
func (imp *importer) parseTypeString(td *TypeDescriptions, id int64, required bool) error {
	if td.TypeString == "" {
		if required {
			return &InternalInconsistencyError{NodeID: id, Reason: "declaration carries no type"}
		}
		return nil
	}
	descriptor, err := ParseTypeDescriptor(td.TypeString)
	if err != nil {
		return err
	}
	td.descriptor = descriptor
	return nil
}
