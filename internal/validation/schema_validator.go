package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaValidator validates documents against registered JSON schemas
type SchemaValidator interface {
	Register(name string, schema []byte) error
	ValidateJSON(name string, data []byte) error
	ValidateYAML(name string, data []byte) error
}

type schemaValidator struct {
	mu       sync.Mutex
	compiler *jsonschema.Compiler
	schemas  map[string]*jsonschema.Schema
}

// NewSchemaValidator creates a new schema validator
func NewSchemaValidator() SchemaValidator {
	return &schemaValidator{
		compiler: jsonschema.NewCompiler(),
		schemas:  make(map[string]*jsonschema.Schema),
	}
}

// Register compiles schema under name
func (v *schemaValidator) Register(name string, schema []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return fmt.Errorf("failed to parse schema %s: %w", name, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.compiler.AddResource(name, doc); err != nil {
		return fmt.Errorf("failed to add schema resource: %w", err)
	}
	compiled, err := v.compiler.Compile(name)
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	v.schemas[name] = compiled
	return nil
}

// ValidateJSON validates JSON bytes
func (v *schemaValidator) ValidateJSON(name string, data []byte) error {
	schema, err := v.lookup(name)
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse JSON data: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return formatSchemaError(err)
	}
	return nil
}

// ValidateYAML converts YAML to JSON and validates it
func (v *schemaValidator) ValidateYAML(name string, data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse YAML data: %w", err)
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert YAML data: %w", err)
	}
	return v.ValidateJSON(name, asJSON)
}

func (v *schemaValidator) lookup(name string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	schema, ok := v.schemas[name]
	if !ok {
		return nil, fmt.Errorf("schema %s is not registered", name)
	}
	return schema, nil
}

func formatSchemaError(err error) error {
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		var lines []string
		collectErrors(verr, &lines)
		return fmt.Errorf("schema validation failed:\n%s", strings.Join(lines, "\n"))
	}
	return fmt.Errorf("validation error: %w", err)
}

func collectErrors(err *jsonschema.ValidationError, lines *[]string) {
	if len(err.Causes) == 0 {
		*lines = append(*lines, formatError(err))
	}
	for _, cause := range err.Causes {
		collectErrors(cause, lines)
	}
}

func formatError(err *jsonschema.ValidationError) string {
	location := "(root)"
	if len(err.InstanceLocation) > 0 {
		location = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil {
		if path := err.ErrorKind.KeywordPath(); len(path) > 0 {
			return fmt.Sprintf("  - at %s: %s validation failed", location, strings.Join(path, "."))
		}
	}
	return fmt.Sprintf("  - at %s: validation failed", location)
}
