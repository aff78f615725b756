package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ticket-bot/internal/common/validation"
	"ticket-bot/internal/models"
)

//go:embed schema.json
var fileSchema string

var ErrInvalidFile = errors.New("invalid scenario file")

// Controls are the tokens that act on an active scenario instead of being
// passed to its current step.
type Controls struct {
	Scenario   string `yaml:"scenario"`
	StartToken string `yaml:"start_token"`
	HelpToken  string `yaml:"help_token"`
	QuitToken  string `yaml:"quit_token"`
	HelpAnswer string `yaml:"help_answer"`
	QuitAnswer string `yaml:"quit_answer"`
}

// File is the conversation configuration: scenarios, intents and the fixed answers.
type File struct {
	DefaultAnswer string          `yaml:"default_answer"`
	Controls      Controls        `yaml:"controls"`
	Intents       []models.Intent `yaml:"intents"`
	Scenarios     []*Definition   `yaml:"scenarios"`
}

// Scenario returns the definition with the given id.
func (f *File) Scenario(id string) (*Definition, bool) {
	for _, d := range f.Scenarios {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// LoadFile reads a scenario file, checks it against the embedded schema and
// builds its definitions.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse validates data against the embedded schema, decodes it and checks
// that every intent and the control scenario point at a defined scenario.
func Parse(data []byte) (*File, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	if _, ok := f.Scenario(f.Controls.Scenario); !ok {
		return nil, fmt.Errorf("%w: controls reference unknown scenario %q", ErrInvalidFile, f.Controls.Scenario)
	}
	for _, in := range f.Intents {
		if in.Answer != "" || in.Scenario == "" {
			continue
		}
		if _, ok := f.Scenario(in.Scenario); !ok {
			return nil, fmt.Errorf("%w: intent %q references unknown scenario %q", ErrInvalidFile, in.Name, in.Scenario)
		}
	}
	return &f, nil
}

func validateSchema(doc interface{}) error {
	result, err := validation.Validate(fileSchema, doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if !result.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidFile, strings.Join(result.GetErrorMessages(), "; "))
	}
	return nil
}
