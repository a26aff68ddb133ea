package yamlnode

import (
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
)

var parseLog = logger.New("yamlnode:parse")

// Parse decodes text into a Node. On a syntax error it returns a nil node
// and exactly one invalid_yaml_syntax finding attributed to label; it never
// returns both. An empty document parses to a Null node.
func Parse(text, label string) (*Node, *finding.Finding) {
	var v any
	if err := yaml.UnmarshalWithOptions([]byte(text), &v, yaml.UseOrderedMap()); err != nil {
		parseLog.Printf("Syntax error in %s: %v", label, err)
		f := syntaxFinding(err, label)
		return nil, &f
	}
	node := FromValue(v)
	applySourceStyle(node, text)
	parseLog.Printf("Parsed %s: kind=%s entries=%d", label, node.Kind(), node.Len())
	return node, nil
}

func syntaxFinding(err error, label string) finding.Finding {
	msg := strings.TrimSpace(yaml.FormatError(err, false, false))
	if msg == "" {
		msg = err.Error()
	}
	f := finding.NewError(
		constants.InvalidYAMLSyntax,
		"Invalid YAML syntax",
		msg,
		label,
	)
	if line, col, ok := errorPosition(msg); ok {
		f = f.WithLocation(&finding.Range{Start: line, End: line}, &finding.Range{Start: col, End: col})
	}
	return f
}

// errorPosition extracts "[line:column]" from a go-yaml error message.
func errorPosition(msg string) (int, int, bool) {
	open := strings.IndexByte(msg, '[')
	closing := strings.IndexByte(msg, ']')
	if open != 0 || closing < 0 {
		return 0, 0, false
	}
	lineText, colText, found := strings.Cut(msg[1:closing], ":")
	if !found {
		return 0, 0, false
	}
	line, ok1 := atoiPositive(lineText)
	col, ok2 := atoiPositive(colText)
	return line, col, ok1 && ok2
}

func atoiPositive(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, n >= 1
}
