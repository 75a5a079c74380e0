// Package harness runs suites of verification cases: guest programs
// executed on an embedded engine whose collected output and exit code
// must match either an explicit expectation or the output of a native
// reference command. Results are graded with proc.Result.Equal, so the
// command that produced a result never influences the verdict.
package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/verirun/verirun/proc"
)

// validate is shared across loads; constructing a validator per call is
// needlessly expensive.
var validate = validator.New()

// Suite is a named collection of verification cases loaded from a
// manifest file.
type Suite struct {
	Version int    `yaml:"version" json:"version" validate:"required,eq=1"`
	Name    string `yaml:"name" json:"name" validate:"required"`
	Cases   []Case `yaml:"cases" json:"cases" validate:"required,min=1,unique=Name,dive"`
}

// Case is one guest program together with what its run must produce.
// Exactly one source of truth is allowed: an explicit expectation, or a
// reference command executed natively on every run.
type Case struct {
	Name      string    `yaml:"name" json:"name" validate:"required"`
	Program   string    `yaml:"program" json:"program" validate:"required"`
	Args      []string  `yaml:"args,omitempty" json:"args,omitempty"`
	Reference string    `yaml:"reference,omitempty" json:"reference,omitempty" validate:"required_without=Expect,excluded_with=Expect"`
	Expect    *Expected `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Expected is a literal expected result. Omitted streams must be empty
// on a passing run; a missing exit_code means 0.
type Expected struct {
	ExitCode int    `yaml:"exit_code" json:"exit_code"`
	Stdout   string `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	Stderr   string `yaml:"stderr,omitempty" json:"stderr,omitempty"`
}

// expected produces the result the embedded run is compared against:
// the explicit expectation when present, otherwise a fresh native run
// of the reference command. Equality ignores the command, so the
// placeholder command on the literal path never affects grading.
func (c Case) expected(ctx context.Context) (proc.Result, error) {
	if c.Expect != nil {
		return proc.NewResult(c.Name, c.Expect.ExitCode, c.Expect.Stderr, c.Expect.Stdout), nil
	}
	return proc.RunNative(ctx, c.Reference)
}

// LoadSuite reads, parses and validates a YAML suite manifest. Relative
// program paths are resolved against the manifest's directory.
func LoadSuite(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite: %w", err)
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("parsing suite %s: %w", path, err)
	}
	if err := validate.Struct(&suite); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range suite.Cases {
		if !filepath.IsAbs(suite.Cases[i].Program) {
			suite.Cases[i].Program = filepath.Join(base, suite.Cases[i].Program)
		}
	}
	return &suite, nil
}

// SuiteSchema returns the JSON schema (Draft 2020-12) describing suite
// manifests, for editor integration and out-of-band validation.
func SuiteSchema() ([]byte, error) {
	reflector := jsonschema.Reflector{ExpandedStruct: true}
	schema := reflector.Reflect(&Suite{})
	out, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling suite schema: %w", err)
	}
	return out, nil
}
