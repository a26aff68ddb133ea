package yamlnode

import (
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-yaml/ast"
	"github.com/goccy/go-yaml/parser"

	"github.com/getumbrel/umbrel-linter/pkg/finding"
)

// Locator maps dotted property paths ("services.web.image") back to source
// positions. It parses lazily and never fails: unknown paths simply have no
// location.
type Locator struct {
	text string
	once sync.Once
	root ast.Node
}

// NewLocator prepares a locator over text.
func NewLocator(text string) *Locator {
	return &Locator{text: text}
}

func (l *Locator) load() {
	file, err := parser.ParseBytes([]byte(l.text), 0)
	if err != nil || file == nil || len(file.Docs) == 0 {
		return
	}
	l.root = file.Docs[0].Body
}

// Locate returns the line and column span of the key at path.
func (l *Locator) Locate(path string) (line, column *finding.Range) {
	if l == nil || path == "" {
		return nil, nil
	}
	l.once.Do(l.load)
	if l.root == nil {
		return nil, nil
	}
	target := find(l.root, strings.Split(path, "."))
	if target == nil {
		return nil, nil
	}
	tok := target.GetToken()
	if tok == nil || tok.Position == nil || tok.Position.Line < 1 {
		return nil, nil
	}
	pos := tok.Position
	width := len(tok.Value)
	if width < 1 {
		width = 1
	}
	col := max(pos.Column, 1)
	return &finding.Range{Start: pos.Line, End: pos.Line}, &finding.Range{Start: col, End: col + width - 1}
}

// Annotate fills in the location of f from its PropertiesPath when known.
func (l *Locator) Annotate(f finding.Finding) finding.Finding {
	if f.Line != nil || f.PropertiesPath == "" {
		return f
	}
	line, col := l.Locate(f.PropertiesPath)
	return f.WithLocation(line, col)
}

func unwrap(n ast.Node) ast.Node {
	for {
		switch v := n.(type) {
		case *ast.DocumentNode:
			n = v.Body
		case *ast.AnchorNode:
			n = v.Value
		case *ast.TagNode:
			n = v.Value
		default:
			return n
		}
	}
}

// find walks segs from n. Mapping keys may themselves contain dots, so a
// key is matched against progressively longer joins of the remaining
// segments. The returned node is the key for mapping lookups and the item
// for sequence lookups.
func find(n ast.Node, segs []string) ast.Node {
	n = unwrap(n)
	if n == nil || len(segs) == 0 {
		return n
	}

	var pairs []*ast.MappingValueNode
	switch v := n.(type) {
	case *ast.MappingNode:
		pairs = v.Values
	case *ast.MappingValueNode:
		pairs = []*ast.MappingValueNode{v}
	case *ast.SequenceNode:
		idx, err := strconv.Atoi(segs[0])
		if err != nil || idx < 0 || idx >= len(v.Values) {
			return nil
		}
		return find(v.Values[idx], segs[1:])
	default:
		return nil
	}

	for width := 1; width <= len(segs); width++ {
		key := strings.Join(segs[:width], ".")
		for _, pair := range pairs {
			if pair.Key == nil || pair.Key.GetToken() == nil || pair.Key.GetToken().Value != key {
				continue
			}
			if width == len(segs) {
				return pair.Key
			}
			if found := find(pair.Value, segs[width:]); found != nil {
				return found
			}
		}
	}
	return nil
}
