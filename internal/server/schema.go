package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/tada/internal/bridge"
)

// argument shapes per command
var argSchemas = map[string]string{
	bridge.CmdAddTodo: `{
		"type": "object",
		"required": ["description"],
		"properties": {"description": {"type": "string"}}
	}`,
	bridge.CmdGetTodos: `{"type": "object"}`,
	bridge.CmdUpdateTodo: `{
		"type": "object",
		"required": ["todo"],
		"properties": {
			"todo": {
				"type": "object",
				"required": ["id", "description", "status"],
				"properties": {
					"id": {"type": "integer", "minimum": 0},
					"description": {"type": "string"},
					"status": {"enum": ["Incomplete", "Complete"]}
				}
			}
		}
	}`,
	bridge.CmdDeleteTodo: `{
		"type": "object",
		"required": ["id"],
		"properties": {"id": {"type": "integer", "minimum": 0}}
	}`,
}

func compileSchemas() (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	out := make(map[string]*jsonschema.Schema, len(bridge.Commands))
	for _, cmd := range bridge.Commands {
		src, ok := argSchemas[cmd]
		if !ok {
			return nil, fmt.Errorf("no argument schema for %s", cmd)
		}
		url := "tada://args/" + cmd + ".json"
		if err := compiler.AddResource(url, strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", cmd, err)
		}
		s, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", cmd, err)
		}
		out[cmd] = s
	}
	return out, nil
}

// validateArgs checks raw against the command's schema. An empty body counts
// as {}.
func validateArgs(schema *jsonschema.Schema, raw []byte) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		if ve, ok := err.(*jsonschema.ValidationError); ok {
			return fmt.Errorf("invalid arguments: %s", leafMessage(ve))
		}
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// leafMessage picks the deepest cause, which names the offending field.
func leafMessage(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}
