package ast

import (
	"encoding/json"
	"strings"
)

// CurrentFormatVersion is the interchange document format version written by the exporter. The importer accepts any
// document whose version satisfies SupportedFormatVersions.
const CurrentFormatVersion = "1.2.0"

// SupportedFormatVersions is the semver constraint the importer checks incoming documents against.
const SupportedFormatVersions = "^1"

// Document is the external interchange form of one source unit's tree, together with the ordered list of source
// unit names its locations reference.
type Document struct {
	FormatVersion string   `json:"formatVersion"`
	SourceList    []string `json:"sourceList"`
	AST           Node     `json:"ast"`
}

// Export converts a finished internal tree into an interchange document. It is total and deterministic over valid
// input: two exports of the same unmodified tree encode byte-identically under the same formatting options.
// Nodes with an unassigned (zero) id are assigned fresh process-unique ids in a pre-order walk; ids already present
// (e.g. on a tree that was itself imported) are preserved verbatim.
func Export(root Node, sourceList []string) *Document {
	assignIDs(root)
	return &Document{
		FormatVersion: CurrentFormatVersion,
		SourceList:    sourceList,
		AST:           root,
	}
}

// Encode serializes the document. The indent width is a presentation-only option: it never affects the decoded
// semantic value, and two encodings differing only in indentation decode to identical trees.
func (d *Document) Encode(indent int) ([]byte, error) {
	if indent <= 0 {
		return json.Marshal(d)
	}
	return json.MarshalIndent(d, "", strings.Repeat(" ", indent))
}

// assignIDs walks the tree in pre-order and assigns ids, starting above the largest id already present, to every
// node whose id is unset. Ids are positive and never reused within one compilation.
func assignIDs(root Node) {
	next := maxID(root) + 1
	var walk func(node Node)
	walk = func(node Node) {
		header := node.common()
		if header.Id == 0 {
			header.Id = next
			next++
		}
		for _, child := range node.Children() {
			walk(child)
		}
	}
	walk(root)
}

// maxID returns the largest id assigned anywhere in the tree, or zero for a tree with no assigned ids.
func maxID(root Node) int64 {
	var max int64
	var walk func(node Node)
	walk = func(node Node) {
		if id := node.ID(); id > max {
			max = id
		}
		for _, child := range node.Children() {
			walk(child)
		}
	}
	walk(root)
	return max
}
