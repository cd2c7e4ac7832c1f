package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ModeReview   = "review"
	ModeGenerate = "generate"
)

// PromptMode configures one writing action.
type PromptMode struct {
	// AssistantID overrides Config.AssistantID for this mode when set.
	AssistantID string `yaml:"assistant_id"`
	// Instruction is prepended to the user's text, separated by a blank line.
	Instruction string `yaml:"instruction"`
}

type Prompts struct {
	Review   PromptMode `yaml:"review"`
	Generate PromptMode `yaml:"generate"`
}

// LoadPrompts reads the YAML prompt profile at path. An empty path or a
// missing file yields the zero profile: the text is sent as-is to the
// configured assistant.
func LoadPrompts(path string) (Prompts, error) {
	var p Prompts
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("read prompts file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	return p, nil
}

// Mode returns the settings for the named mode.
func (p Prompts) Mode(name string) (PromptMode, bool) {
	switch name {
	case ModeReview:
		return p.Review, true
	case ModeGenerate:
		return p.Generate, true
	}
	return PromptMode{}, false
}

// Build composes the prompt sent to the assistant.
func (m PromptMode) Build(text string) string {
	if m.Instruction == "" {
		return text
	}
	return m.Instruction + "\n\n" + text
}

// Assistant picks the per-mode assistant, falling back to def.
func (m PromptMode) Assistant(def string) string {
	if m.AssistantID != "" {
		return m.AssistantID
	}
	return def
}
