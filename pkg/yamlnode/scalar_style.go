package yamlnode

import (
	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"
	"github.com/goccy/go-yaml/token"
)

// legacyBools is the YAML 1.1 boolean vocabulary. Older compose tooling
// resolves these plain scalars to booleans even though YAML 1.2 does not.
var legacyBools = map[string]bool{
	"y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
	"true": true, "True": true, "TRUE": true,
	"on": true, "On": true, "ON": true,
	"n": false, "N": false, "no": false, "No": false, "NO": false,
	"false": false, "False": false, "FALSE": false,
	"off": false, "Off": false, "OFF": false,
}

// IsPlain reports whether a String node was written as an unquoted scalar.
func (n *Node) IsPlain() bool {
	return n.Kind() == String && n.plain
}

// LegacyBool returns the boolean a YAML 1.1 loader reads from n: the value
// of a Bool node, or of a plain string such as yes, on or off.
func (n *Node) LegacyBool() (bool, bool) {
	if b, ok := n.BoolValue(); ok {
		return b, true
	}
	if !n.IsPlain() {
		return false, false
	}
	b, ok := legacyBools[n.s]
	return b, ok
}

// applySourceStyle walks the syntax tree of text alongside root, marking
// plain string scalars and restoring the source text of tagged timestamps.
func applySourceStyle(root *Node, text string) {
	file, err := parser.ParseBytes([]byte(text), 0)
	if err != nil || file == nil {
		return
	}
	for _, doc := range file.Docs {
		if doc.Body != nil {
			styleNode(root, doc.Body)
			return
		}
	}
}

func styleNode(n *Node, src ast.Node) {
	if n == nil || src == nil {
		return
	}
	switch v := src.(type) {
	case *ast.DocumentNode:
		styleNode(n, v.Body)
	case *ast.AnchorNode:
		styleNode(n, v.Value)
	case *ast.TagNode:
		if v.Start != nil && token.ReservedTagKeyword(v.Start.Value) == token.TimestampTag && n.Kind() == String {
			if tok := tokenOf(v.Value); tok != nil {
				n.s = tok.Value
			}
			return
		}
		styleNode(n, v.Value)
	case *ast.StringNode:
		if n.Kind() == String && v.Token != nil && v.Token.Type == token.StringType {
			n.plain = true
		}
	case *ast.MappingNode:
		for _, pair := range v.Values {
			stylePair(n, pair)
		}
	case *ast.MappingValueNode:
		stylePair(n, v)
	case *ast.SequenceNode:
		for i, item := range v.Values {
			if i < len(n.items) {
				styleNode(n.items[i], item)
			}
		}
	}
}

func stylePair(n *Node, pair *ast.MappingValueNode) {
	if pair == nil || pair.Key == nil || pair.Key.IsMergeKey() {
		return
	}
	tok := pair.Key.GetToken()
	if tok == nil {
		return
	}
	styleNode(n.Get(tok.Value), pair.Value)
}

func tokenOf(n ast.Node) *token.Token {
	if n == nil {
		return nil
	}
	return n.GetToken()
}
