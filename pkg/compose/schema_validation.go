package compose

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/getumbrel/umbrel-linter/pkg/logger"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var schemaLog = logger.New("compose:schema_validation")

//go:embed schemas/compose.json
var composeSchemaJSON []byte

const composeSchemaURL = "compose.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(composeSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse embedded compose schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(composeSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add compose schema: %w", err)
	}
	return c.Compile(composeSchemaURL)
})

var printer = message.NewPrinter(language.English)

// validateSchema checks the structural shape of the document. Every
// failing leaf becomes one finding.
func validateSchema(d *document) []finding.Finding {
	schema, err := compiledSchema()
	if err != nil {
		// Only reachable with a broken embedded schema.
		schemaLog.Printf("Compose schema unavailable: %v", err)
		return nil
	}

	inst, err := toInstance(d.root.Interface())
	if err != nil {
		schemaLog.Printf("Could not convert document for schema validation: %v", err)
		return nil
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		schemaLog.Printf("Schema validation failed unexpectedly: %v", err)
		return nil
	}

	var out []finding.Finding
	for _, leaf := range leafErrors(verr) {
		out = append(out, d.newFinding(finding.Error,
			constants.SchemaValidationError,
			"Docker Compose schema validation failed",
			leaf.ErrorKind.LocalizedString(printer),
			strings.Join(leaf.InstanceLocation, "."),
		))
	}
	schemaLog.Printf("Schema validation of %s produced %d findings", d.file, len(out))
	return out
}

// toInstance round-trips v through JSON so numbers reach the validator as
// json.Number.
func toInstance(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}

// leafErrors flattens the error tree. A failed oneOf is reported as one
// error rather than one per alternative.
func leafErrors(e *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(e.Causes) == 0 || isAlternatives(e) {
		return []*jsonschema.ValidationError{e}
	}
	var out []*jsonschema.ValidationError
	for _, c := range e.Causes {
		out = append(out, leafErrors(c)...)
	}
	return out
}

func isAlternatives(e *jsonschema.ValidationError) bool {
	kp := e.ErrorKind.KeywordPath()
	if len(kp) == 0 {
		return false
	}
	last := kp[len(kp)-1]
	return last == "oneOf" || last == "anyOf"
}
