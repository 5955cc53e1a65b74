// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Frontmark Contributors

package store

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/frontmark/frontmark/internal/engine"
)

// SchemaID is the $id of the rule-file schema.
const SchemaID = "https://frontmark.dev/schemas/rules.schema.json"

// schemaState holds the compiled per-rule schema and sync.Once for
// thread-safe initialization.
type schemaState struct {
	once   sync.Once
	schema *jschema.Schema
	err    error
}

var globalSchemaState = &schemaState{}

// GenerateSchema generates the JSON Schema of the whole rule file.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&File{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Frontmark Rule File"
	schema.Description = "Schema for the persisted rule set"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.In("schema").Hint("failed to marshal schema").Wrap(err)
	}
	data = append(data, '\n')
	return data, nil
}

// generateRuleSchema generates the JSON Schema of a single rule entry,
// used to screen entries on load.
func generateRuleSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&engine.Rule{})
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, oops.In("schema").Hint("failed to marshal rule schema").Wrap(err)
	}
	return data, nil
}

// compiledRuleSchema returns the cached compiled rule schema.
func compiledRuleSchema() (*jschema.Schema, error) {
	globalSchemaState.once.Do(func() {
		globalSchemaState.schema, globalSchemaState.err = compileRuleSchema()
	})
	return globalSchemaState.schema, globalSchemaState.err
}

func compileRuleSchema() (*jschema.Schema, error) {
	schemaBytes, err := generateRuleSchema()
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, oops.In("schema").Hint("failed to parse schema JSON").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("rule.schema.json", schemaData); err != nil {
		return nil, oops.In("schema").Hint("failed to add schema resource").Wrap(err)
	}
	sch, err := c.Compile("rule.schema.json")
	if err != nil {
		return nil, oops.In("schema").Hint("failed to compile schema").Wrap(err)
	}
	return sch, nil
}
