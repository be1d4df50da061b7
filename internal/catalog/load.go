package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a catalog document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath guesses the format from a file extension. Unknown
// extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ErrLoad indicates the catalog could not be read or parsed. The engine
// keeps running on an empty catalog when this is returned.
type ErrLoad struct {
	Source string
	Err    error
}

func (e *ErrLoad) Error() string {
	return fmt.Sprintf("load catalog %s: %v", e.Source, e.Err)
}

func (e *ErrLoad) Unwrap() error { return e.Err }

type document struct {
	Blocks map[string]*Block `json:"blocks"`
	Badges []BadgeDef        `json:"badges"`
}

// Load reads the catalog at path. On any failure it returns an empty
// catalog together with an *ErrLoad, so callers can degrade instead of exit.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Empty(), &ErrLoad{Source: path, Err: err}
	}
	c, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return Empty(), &ErrLoad{Source: path, Err: err}
	}
	return c, nil
}

// Parse decodes and validates a catalog document.
func Parse(data []byte, format Format) (*Catalog, error) {
	var raw any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		// Re-encode through JSON so both formats share one schema and
		// one decoder; YAML allows non-string keys such as `1:`.
		b, err := json.Marshal(normalizeYAML(raw))
		if err != nil {
			return nil, fmt.Errorf("convert YAML: %w", err)
		}
		data = b
		raw = nil
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("convert YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for id, b := range doc.Blocks {
		if err := checkUniqueIDs(b); err != nil {
			return nil, fmt.Errorf("block %s: %w", id, err)
		}
		for _, t := range b.Tasks {
			if err := checkAnswerable(t.Payload); err != nil {
				return nil, fmt.Errorf("block %s: task %s: %w", id, t.ID, err)
			}
		}
	}
	return New(doc.Blocks, doc.Badges), nil
}

func checkUniqueIDs(b *Block) error {
	seen := make(map[TaskID]bool, len(b.Tasks))
	for _, t := range b.Tasks {
		if seen[t.ID] {
			return fmt.Errorf("duplicate task id %s", t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// checkAnswerable rejects payloads that no response could grade as correct.
// The first step of a find-the-error task restates the problem and cannot
// be the faulty one.
func checkAnswerable(p Payload) error {
	switch p := p.(type) {
	case FindTheError:
		faulty := 0
		for _, s := range p.Steps {
			if !s.IsCorrect {
				faulty++
			}
		}
		if faulty != 1 {
			return fmt.Errorf("find_the_error needs exactly one incorrect step, has %d", faulty)
		}
		if p.FaultyStep() < 2 {
			return errors.New("find_the_error cannot flag the first step")
		}
	case MultipleChoice:
		if !slices.Contains(p.Options, p.CorrectSolution) {
			return fmt.Errorf("multiple_choice solution %q is not among the options", p.CorrectSolution)
		}
	}
	return nil
}

// normalizeYAML converts map[any]any nodes into map[string]any.
func normalizeYAML(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, val := range v {
			v[k] = normalizeYAML(val)
		}
		return v
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case []any:
		for i, val := range v {
			v[i] = normalizeYAML(val)
		}
		return v
	default:
		return v
	}
}
