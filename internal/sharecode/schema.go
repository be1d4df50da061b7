package sharecode

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://mathstudent/share-code.json"

// storeSchema accepts every stored generation of a block record; field
// presence is resolved by migration, only types are checked here.
const storeSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["progress"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "progress": {
      "type": "object",
      "propertyNames": {"pattern": "^block_.+"},
      "additionalProperties": {"$ref": "#/$defs/block"}
    },
    "userProfile": {
      "type": "object",
      "properties": {
        "badgesEarned": {"type": "array", "items": {"type": "string"}}
      }
    },
    "streak": {
      "type": "object",
      "properties": {
        "current": {"type": "integer", "minimum": 0}
      }
    },
    "lastSession": {"type": ["string", "null"]}
  },
  "$defs": {
    "taskId": {"type": ["string", "number"]},
    "block": {
      "type": "object",
      "properties": {
        "unlockedLevel": {"type": "number"},
        "currentDifficulty": {"type": "number"},
        "levelResults": {
          "type": "object",
          "additionalProperties": {"type": "number"}
        },
        "currentLevelProgress": {"type": "array", "items": {"$ref": "#/$defs/taskId"}},
        "correctlySolvedTasks": {"type": "array", "items": {"$ref": "#/$defs/taskId"}},
        "recentAnswers": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["taskId", "correct"],
            "properties": {
              "taskId": {"$ref": "#/$defs/taskId"},
              "correct": {"type": "boolean"}
            }
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

func storeValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var def any
		if err := json.Unmarshal([]byte(storeSchema), &def); err != nil {
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

func validateStore(doc any) error {
	sch, err := storeValidator()
	if err != nil {
		return err
	}
	return sch.Validate(doc)
}
