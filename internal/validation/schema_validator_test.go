package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0}
	},
	"required": ["name"]
}`

func TestSchemaValidator(t *testing.T) {
	v := NewSchemaValidator()
	require.NoError(t, v.Register("person.schema.json", []byte(personSchema)))

	tests := []struct {
		name     string
		yaml     bool
		data     string
		errorMsg string
	}{
		{name: "valid json", data: `{"name": "John", "age": 30}`},
		{name: "valid yaml", yaml: true, data: "name: Jane\nage: 4\n"},
		{name: "missing required", data: `{"age": 25}`, errorMsg: "required"},
		{name: "wrong type", data: `{"name": "John", "age": "thirty"}`, errorMsg: "/age"},
		{name: "below minimum", yaml: true, data: "name: John\nage: -5\n", errorMsg: "/age"},
		{name: "invalid json", data: `{"name": }`, errorMsg: "parse JSON"},
		{name: "invalid yaml", yaml: true, data: "name: [\n", errorMsg: "parse YAML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.yaml {
				err = v.ValidateYAML("person.schema.json", []byte(tt.data))
			} else {
				err = v.ValidateJSON("person.schema.json", []byte(tt.data))
			}

			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestSchemaValidator_Unregistered(t *testing.T) {
	v := NewSchemaValidator()
	err := v.ValidateJSON("missing.json", []byte(`{}`))
	assert.ErrorContains(t, err, "not registered")
}
