// Package yamlnode parses YAML documents into a generic, order-preserving
// tree. Compose files and manifests are checked rule by rule rather than
// decoded into fixed structs, so every consumer works on *Node.
package yamlnode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Kind is the shape of a Node.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Int:
		return "integer"
	case Float:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "array"
	case Mapping:
		return "object"
	}
	return "unknown"
}

// Field is one key of a mapping. Non-string keys are stored in their
// textual form.
type Field struct {
	Key   string
	Value *Node
}

// Node is a tagged union over the YAML data model.
type Node struct {
	kind   Kind
	b      bool
	i      int64
	f      float64
	s      string
	plain  bool
	items  []*Node
	fields []Field
}

// NewString, NewInt, NewBool and NewMapping build nodes by hand, mostly for tests.
func NewString(s string) *Node { return &Node{kind: String, s: s} }
func NewInt(i int64) *Node     { return &Node{kind: Int, i: i} }
func NewBool(b bool) *Node     { return &Node{kind: Bool, b: b} }

func NewMapping(fields ...Field) *Node {
	return &Node{kind: Mapping, fields: fields}
}

func NewSequence(items ...*Node) *Node {
	return &Node{kind: Sequence, items: items}
}

// FromValue converts a decoded go-yaml value (with yaml.MapSlice for
// mappings) into a Node.
func FromValue(v any) *Node {
	switch val := v.(type) {
	case nil:
		return &Node{kind: Null}
	case *Node:
		return val
	case bool:
		return &Node{kind: Bool, b: val}
	case string:
		return &Node{kind: String, s: val}
	case int:
		return &Node{kind: Int, i: int64(val)}
	case int8:
		return &Node{kind: Int, i: int64(val)}
	case int16:
		return &Node{kind: Int, i: int64(val)}
	case int32:
		return &Node{kind: Int, i: int64(val)}
	case int64:
		return &Node{kind: Int, i: val}
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return fromUint(uint64(val))
	case uint16:
		return fromUint(uint64(val))
	case uint32:
		return fromUint(uint64(val))
	case uint64:
		return fromUint(val)
	case float32:
		return &Node{kind: Float, f: float64(val)}
	case float64:
		return &Node{kind: Float, f: val}
	case time.Time:
		return &Node{kind: String, s: val.Format(time.RFC3339)}
	case yaml.MapSlice:
		n := &Node{kind: Mapping, fields: make([]Field, 0, len(val))}
		for _, item := range val {
			n.fields = append(n.fields, Field{Key: keyText(item.Key), Value: FromValue(item.Value)})
		}
		return n
	case map[string]any:
		n := &Node{kind: Mapping}
		for k, item := range val {
			n.fields = append(n.fields, Field{Key: k, Value: FromValue(item)})
		}
		return n
	case []any:
		n := &Node{kind: Sequence, items: make([]*Node, 0, len(val))}
		for _, item := range val {
			n.items = append(n.items, FromValue(item))
		}
		return n
	default:
		return &Node{kind: String, s: fmt.Sprint(val)}
	}
}

func fromUint(u uint64) *Node {
	if u > math.MaxInt64 {
		return &Node{kind: Float, f: float64(u)}
	}
	return &Node{kind: Int, i: int64(u)}
}

func keyText(k any) string {
	if k == nil {
		return "null"
	}
	return FromValue(k).Text()
}

// Kind returns the node's shape; a nil node is Null.
func (n *Node) Kind() Kind {
	if n == nil {
		return Null
	}
	return n.kind
}

func (n *Node) IsNull() bool     { return n.Kind() == Null }
func (n *Node) IsMapping() bool  { return n.Kind() == Mapping }
func (n *Node) IsSequence() bool { return n.Kind() == Sequence }
func (n *Node) IsString() bool   { return n.Kind() == String }
func (n *Node) IsBool() bool     { return n.Kind() == Bool }

// IsNumber is true for both integer and float nodes.
func (n *Node) IsNumber() bool {
	k := n.Kind()
	return k == Int || k == Float
}

// IsScalar is true for every kind except mappings and sequences.
func (n *Node) IsScalar() bool {
	k := n.Kind()
	return k != Mapping && k != Sequence
}

// Get returns the value stored under key, or nil when n is not a mapping
// or has no such key. A YAML null value is returned as a Null node.
func (n *Node) Get(key string) *Node {
	if n.Kind() != Mapping {
		return nil
	}
	for _, f := range n.fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Has reports whether the mapping contains key, even with a null value.
func (n *Node) Has(key string) bool {
	return n.Get(key) != nil
}

// Fields returns the mapping entries in document order.
func (n *Node) Fields() []Field {
	if n.Kind() != Mapping {
		return nil
	}
	return n.fields
}

// Keys returns the mapping keys in document order.
func (n *Node) Keys() []string {
	fields := n.Fields()
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Items returns the sequence elements.
func (n *Node) Items() []*Node {
	if n.Kind() != Sequence {
		return nil
	}
	return n.items
}

// Len is the number of entries of a mapping or sequence, or the length
// of a string.
func (n *Node) Len() int {
	switch n.Kind() {
	case Mapping:
		return len(n.fields)
	case Sequence:
		return len(n.items)
	case String:
		return len(n.s)
	}
	return 0
}

// Str returns the value of a String node.
func (n *Node) Str() (string, bool) {
	if n.Kind() != String {
		return "", false
	}
	return n.s, true
}

// BoolValue returns the value of a Bool node.
func (n *Node) BoolValue() (bool, bool) {
	if n.Kind() != Bool {
		return false, false
	}
	return n.b, true
}

// IntValue returns the value of an Int node, or of a Float node holding a
// whole number.
func (n *Node) IntValue() (int64, bool) {
	switch n.Kind() {
	case Int:
		return n.i, true
	case Float:
		if n.f == math.Trunc(n.f) && !math.IsInf(n.f, 0) {
			return int64(n.f), true
		}
	}
	return 0, false
}

// FloatValue returns the numeric value of an Int or Float node.
func (n *Node) FloatValue() (float64, bool) {
	switch n.Kind() {
	case Int:
		return float64(n.i), true
	case Float:
		return n.f, true
	}
	return 0, false
}

// Text renders a scalar as plain text: strings verbatim, numbers in their
// shortest form, booleans as true/false and null as the empty string.
// Collections render as their YAML flow form.
func (n *Node) Text() string {
	switch n.Kind() {
	case Null:
		return ""
	case Bool:
		return strconv.FormatBool(n.b)
	case Int:
		return strconv.FormatInt(n.i, 10)
	case Float:
		return strconv.FormatFloat(n.f, 'f', -1, 64)
	case String:
		return n.s
	}
	out, err := yaml.MarshalWithOptions(n.Interface(), yaml.Flow(true))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// Interface converts the tree into plain Go values (map[string]any, []any,
// string, float64, int64, bool, nil) suitable for JSON encoding.
func (n *Node) Interface() any {
	switch n.Kind() {
	case Bool:
		return n.b
	case Int:
		return n.i
	case Float:
		return n.f
	case String:
		return n.s
	case Sequence:
		out := make([]any, 0, len(n.items))
		for _, item := range n.items {
			out = append(out, item.Interface())
		}
		return out
	case Mapping:
		out := make(map[string]any, len(n.fields))
		for _, f := range n.fields {
			out[f.Key] = f.Value.Interface()
		}
		return out
	}
	return nil
}

// EnvMap reads a compose-style key/value block. Mappings map each key to the
// text of its value; sequences of "KEY=VALUE" strings are split on the first
// "=" and entries without one are skipped. Any other shape yields nil.
func (n *Node) EnvMap() map[string]string {
	switch n.Kind() {
	case Mapping:
		out := make(map[string]string, len(n.fields))
		for _, f := range n.fields {
			out[f.Key] = f.Value.Text()
		}
		return out
	case Sequence:
		out := make(map[string]string, len(n.items))
		for _, item := range n.items {
			s, ok := item.Str()
			if !ok {
				continue
			}
			if k, v, found := strings.Cut(s, "="); found {
				out[k] = v
			}
		}
		return out
	}
	return nil
}
