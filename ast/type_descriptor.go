package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// TypeDescriptor is the structured representation of a type system value. Every descriptor serializes to a single
// canonical string via String(), and ParseTypeDescriptor recovers the structured form from that string.
// Re-serializing a parsed descriptor always yields the original string.
type TypeDescriptor interface {
	// String returns the canonical textual form of the type.
	String() string
}

// ElementaryType describes a built-in value type, e.g. uint256, address, bool, bytes32, string.
type ElementaryType struct {
	Name string
}

func (t *ElementaryType) String() string {
	return t.Name
}

// ArrayType describes a statically or dynamically sized array over an element type.
type ArrayType struct {
	Element TypeDescriptor

	// Length is the fixed element count, or a negative value for dynamically sized arrays.
	Length int64
}

func (t *ArrayType) String() string {
	if t.Length < 0 {
		return t.Element.String() + "[]"
	}
	return fmt.Sprintf("%s[%d]", t.Element.String(), t.Length)
}

// MappingType describes a key/value mapping.
type MappingType struct {
	Key   TypeDescriptor
	Value TypeDescriptor
}

func (t *MappingType) String() string {
	return fmt.Sprintf("mapping(%s => %s)", t.Key.String(), t.Value.String())
}

// StructType describes a user-defined aggregate. The canonical form carries the member types so that parsing the
// string recovers the full descriptor without a symbol table.
type StructType struct {
	// CanonicalName is the qualified name of the struct, e.g. "Vault.Position".
	CanonicalName string
	Fields        []TypeDescriptor
}

func (t *StructType) String() string {
	fields := make([]string, len(t.Fields))
	for i, field := range t.Fields {
		fields[i] = field.String()
	}
	return fmt.Sprintf("struct %s(%s)", t.CanonicalName, strings.Join(fields, ","))
}

// FunctionType describes a callable value. Parameter and return types always print before the visibility and
// mutability modifiers.
type FunctionType struct {
	Parameters []TypeDescriptor
	Returns    []TypeDescriptor

	// Visibility is one of "", "internal", "external", "public", "private".
	Visibility string

	// Mutability is one of "", "pure", "view", "payable".
	Mutability string
}

func (t *FunctionType) String() string {
	parameters := make([]string, len(t.Parameters))
	for i, parameter := range t.Parameters {
		parameters[i] = parameter.String()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("function (%s)", strings.Join(parameters, ",")))
	if t.Visibility != "" {
		sb.WriteString(" " + t.Visibility)
	}
	if t.Mutability != "" {
		sb.WriteString(" " + t.Mutability)
	}
	if len(t.Returns) > 0 {
		returns := make([]string, len(t.Returns))
		for i, ret := range t.Returns {
			returns[i] = ret.String()
		}
		sb.WriteString(fmt.Sprintf(" returns (%s)", strings.Join(returns, ",")))
	}
	return sb.String()
}

// ContractType describes a reference to a deployed contract instance.
type ContractType struct {
	Name string
}

func (t *ContractType) String() string {
	return "contract " + t.Name
}

// ParseTypeDescriptor parses a canonical type string back into its structured form. It fails with an
// UnknownTypeError carrying the offending position on any lexical or structural mismatch, including trailing input.
func ParseTypeDescriptor(s string) (TypeDescriptor, error) {
	p := &typeParser{input: s}
	descriptor, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.input) {
		return nil, p.fail()
	}
	return descriptor, nil
}

// typeParser is a recursive-descent parser over the canonical type grammar.
type typeParser struct {
	input string
	pos   int
}

func (p *typeParser) fail() error {
	return &UnknownTypeError{Input: p.input, Offset: p.pos}
}

// consume advances past the given literal if it is next in the input, returning whether it did.
func (p *typeParser) consume(literal string) bool {
	if strings.HasPrefix(p.input[p.pos:], literal) {
		p.pos += len(literal)
		return true
	}
	return false
}

// parseType parses one full type: a primary type followed by any number of array suffixes.
func (p *typeParser) parseType() (TypeDescriptor, error) {
	descriptor, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	// Apply array suffixes, innermost first.
	for p.consume("[") {
		if p.consume("]") {
			descriptor = &ArrayType{Element: descriptor, Length: -1}
			continue
		}
		digits := p.takeWhile(isDigit)
		if digits == "" || !p.consume("]") {
			return nil, p.fail()
		}
		length, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return nil, p.fail()
		}
		descriptor = &ArrayType{Element: descriptor, Length: length}
	}
	return descriptor, nil
}

// parsePrimary parses a non-array type.
func (p *typeParser) parsePrimary() (TypeDescriptor, error) {
	switch {
	case p.consume("mapping("):
		key, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if !p.consume(" => ") {
			return nil, p.fail()
		}
		value, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if !p.consume(")") {
			return nil, p.fail()
		}
		return &MappingType{Key: key, Value: value}, nil

	case p.consume("struct "):
		name := p.takeWhile(isQualifiedNameChar)
		if name == "" || !p.consume("(") {
			return nil, p.fail()
		}
		fields, err := p.parseTypeList()
		if err != nil {
			return nil, err
		}
		if !p.consume(")") {
			return nil, p.fail()
		}
		return &StructType{CanonicalName: name, Fields: fields}, nil

	case p.consume("function ("):
		parameters, err := p.parseTypeList()
		if err != nil {
			return nil, err
		}
		if !p.consume(")") {
			return nil, p.fail()
		}
		function := &FunctionType{Parameters: parameters}
		for _, visibility := range []string{"internal", "external", "public", "private"} {
			if p.consume(" " + visibility) {
				function.Visibility = visibility
				break
			}
		}
		for _, mutability := range []string{"pure", "view", "payable"} {
			if p.consume(" " + mutability) {
				function.Mutability = mutability
				break
			}
		}
		if p.consume(" returns (") {
			function.Returns, err = p.parseTypeList()
			if err != nil {
				return nil, err
			}
			if !p.consume(")") {
				return nil, p.fail()
			}
		}
		return function, nil

	case p.consume("contract "):
		name := p.takeWhile(isIdentifierChar)
		if name == "" {
			return nil, p.fail()
		}
		return &ContractType{Name: name}, nil

	default:
		name := p.takeWhile(isIdentifierChar)
		if name == "" {
			return nil, p.fail()
		}
		return &ElementaryType{Name: name}, nil
	}
}

// parseTypeList parses a comma-separated, possibly empty list of types. The caller consumes the surrounding
// parentheses.
func (p *typeParser) parseTypeList() ([]TypeDescriptor, error) {
	// An empty list is permitted: the next character closes the list.
	if p.pos < len(p.input) && p.input[p.pos] == ')' {
		return nil, nil
	}

	var list []TypeDescriptor
	for {
		descriptor, err := p.parseType()
		if err != nil {
			return nil, err
		}
		list = append(list, descriptor)
		if !p.consume(",") {
			return list, nil
		}
	}
}

// takeWhile consumes and returns the longest prefix of characters satisfying the predicate.
func (p *typeParser) takeWhile(predicate func(byte) bool) string {
	start := p.pos
	for p.pos < len(p.input) && predicate(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || isDigit(c) || c == '_' || c == '$'
}

func isQualifiedNameChar(c byte) bool {
	return isIdentifierChar(c) || c == '.'
}
