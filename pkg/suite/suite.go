// Package suite describes which commands the pipeline provisions and runs.
// The built-in defaults reproduce the proof-construction benchmark setup; a
// JSON suite file overrides them for other targets.
package suite

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// Command is a single subprocess invocation.
type Command struct {
	Command string   `json:"command" validate:"required"`
	Args    []string `json:"args"`
}

// Suite is the full benchmark suite definition. Flags disabling colorized or
// interactive output belong in harness Args so captured text stays plain.
type Suite struct {
	Target    string    `json:"target"    validate:"required,min=3"`
	Workdir   string    `json:"workdir"`
	Provision []Command `json:"provision" validate:"dive"`
	Harnesses struct {
		Counter     Command `json:"counter"     validate:"required"`
		Statistical Command `json:"statistical" validate:"required"`
	} `json:"harnesses"`
}

// Default is the suite the original pipeline ran: valgrind-backed instruction
// counting and a criterion wall-clock run, both against the proof-construction
// benchmark entry points.
func Default() Suite {
	var s Suite

	s.Target = "proof-construction"
	s.Provision = []Command{
		{Command: "apt-get", Args: []string{"install", "-y", "valgrind"}},
		{Command: "cargo", Args: []string{"install", "cargo-criterion"}},
	}
	s.Harnesses.Counter = Command{
		Command: "cargo",
		Args:    []string{"bench", "-p", "kimchi", "--bench", "proof_iai"},
	}
	s.Harnesses.Statistical = Command{
		Command: "cargo",
		Args:    []string{"criterion", "-p", "kimchi", "--bench", "proof_criterion", "--color", "never"},
	}

	return s
}

// schema mirrors the struct shape so suite files are rejected with positional
// errors before struct validation runs.
var schema = map[string]any{
	"type":     "object",
	"required": []string{"target", "harnesses"},
	"properties": map[string]any{
		"target":  map[string]any{"type": "string", "minLength": 3},
		"workdir": map[string]any{"type": "string"},
		"provision": map[string]any{
			"type":  "array",
			"items": commandSchema,
		},
		"harnesses": map[string]any{
			"type":     "object",
			"required": []string{"counter", "statistical"},
			"properties": map[string]any{
				"counter":     commandSchema,
				"statistical": commandSchema,
			},
		},
	},
}

var commandSchema = map[string]any{
	"type":     "object",
	"required": []string{"command"},
	"properties": map[string]any{
		"command": map[string]any{"type": "string", "minLength": 1},
		"args": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

// Validate checks raw suite data against the JSON schema.
func Validate(data any) error {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("suite schema validation failed: %w", err)
	}

	if !result.Valid() {
		errs := make([]error, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			errs = append(errs, fmt.Errorf("suite field %s: %s", desc.Field(), desc.Description()))
		}

		return errors.Join(errs...)
	}

	return nil
}

// Load reads and validates a suite file. An empty path yields the default
// suite.
func Load(path string, validate *validator.Validate) (Suite, error) {
	if path == "" {
		return Default(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Suite{}, fmt.Errorf("failed to read suite file %s: %w", path, err)
	}

	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return Suite{}, fmt.Errorf("failed to parse suite file %s: %w", path, err)
	}

	if err := Validate(data); err != nil {
		return Suite{}, err
	}

	var s Suite
	if err := json.Unmarshal(raw, &s); err != nil {
		return Suite{}, fmt.Errorf("failed to decode suite file %s: %w", path, err)
	}

	if validate != nil {
		if err := validate.Struct(s); err != nil {
			return Suite{}, fmt.Errorf("suite struct validation failed: %w", err)
		}
	}

	return s, nil
}
