package catalog

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://mathstudent/catalog.json"

// documentSchema describes the catalog document. Per-type payload shapes
// are checked with if/then so a typo in a task's data is reported with
// the offending path.
const documentSchema = `{
  "type": "object",
  "required": ["blocks"],
  "properties": {
    "blocks": {
      "type": "object",
      "additionalProperties": { "$ref": "#/$defs/block" }
    },
    "badges": {
      "type": "array",
      "items": { "$ref": "#/$defs/badge" }
    }
  },
  "$defs": {
    "block": {
      "type": "object",
      "required": ["title", "tasks"],
      "properties": {
        "title": { "type": "string" },
        "icon": { "type": "string" },
        "tasks": { "type": "array", "items": { "$ref": "#/$defs/task" } }
      }
    },
    "task": {
      "type": "object",
      "required": ["id", "difficulty", "type", "data"],
      "properties": {
        "id": { "type": ["string", "integer"] },
        "difficulty": { "type": "integer", "minimum": 1, "maximum": 5 },
        "type": {
          "enum": ["solve_expression", "drag_and_drop", "assignment_memory", "find_the_error", "multiple_choice"]
        },
        "data": { "type": "object", "required": ["question"] },
        "hints": { "type": "array", "items": { "type": "string" } }
      },
      "allOf": [
        {
          "if": { "properties": { "type": { "const": "solve_expression" } } },
          "then": { "properties": { "data": { "required": ["solution"] } } }
        },
        {
          "if": { "properties": { "type": { "const": "drag_and_drop" } } },
          "then": { "properties": { "data": {
            "required": ["blocks", "finalSolution"],
            "properties": { "blocks": { "type": "array", "items": { "type": "string" } } }
          } } }
        },
        {
          "if": { "properties": { "type": { "const": "assignment_memory" } } },
          "then": { "properties": { "data": {
            "required": ["pairs"],
            "properties": { "pairs": { "type": "array", "minItems": 1, "items": {
              "type": "object", "required": ["left", "right"]
            } } }
          } } }
        },
        {
          "if": { "properties": { "type": { "const": "find_the_error" } } },
          "then": { "properties": { "data": {
            "required": ["steps"],
            "properties": { "steps": { "type": "array", "minItems": 2, "items": {
              "type": "object", "required": ["text", "isCorrect"]
            } } }
          } } }
        },
        {
          "if": { "properties": { "type": { "const": "multiple_choice" } } },
          "then": { "properties": { "data": {
            "required": ["options", "correctSolution"],
            "properties": { "options": { "type": "array", "minItems": 1, "items": { "type": "string" } } }
          } } }
        }
      ]
    },
    "badge": {
      "type": "object",
      "required": ["id", "title", "condition"],
      "properties": {
        "id": { "type": "string", "minLength": 1 },
        "condition": {
          "type": "object",
          "required": ["kind", "count"],
          "properties": {
            "kind": { "enum": ["streak", "solveCount", "solveCountByType", "minTasksPerBlock"] },
            "count": { "type": "integer", "minimum": 0 }
          }
        }
      }
    }
  }
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func documentValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(documentSchema), &def); err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validateDocument checks a parsed (json.Unmarshal'd) document against the schema.
func validateDocument(doc any) error {
	sch, err := documentValidator()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
