package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/designbridge/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Script is a sequence of commands sent through one bridge, so later steps
// inherit the session context established by earlier ones.
//
//	name: landing
//	steps:
//	  - kind: create_wireframe
//	    args: {description: Landing, pages: [Home, Pricing]}
//	  - kind: add_element
//	    args: {elementType: button, name: Sign up}
type Script struct {
	Name            string `yaml:"name"`
	ContinueOnError bool   `yaml:"continue_on_error"`
	Steps           []Step `yaml:"steps"`

	commands []domain.Command
}

// Step is one command of a script.
type Step struct {
	Kind string         `yaml:"kind"`
	Args map[string]any `yaml:"args"`
}

// LoadScript reads and validates a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a script and its payloads. Every step is checked before any is sent.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, errors.New("script has no steps")
	}

	s.commands = make([]domain.Command, len(s.Steps))
	for i, step := range s.Steps {
		kind, err := NormalizeKind(step.Kind)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		args := step.Args
		if args == nil {
			args = map[string]any{}
		}
		cmd, err := buildCommand(kind, args)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		s.commands[i] = cmd
	}
	return &s, nil
}

// Commands returns the decoded commands in order.
func (s *Script) Commands() []domain.Command {
	return s.commands
}

// RunScript sends every step in order, printing each result. It stops at the
// first failed step unless the script sets continue_on_error.
func RunScript(ctx context.Context, s Sender, script *Script, p Printer) error {
	failed := 0
	for i, cmd := range script.commands {
		if err := ctx.Err(); err != nil {
			return handleExecutionError(err)
		}

		resp, err := s.Send(ctx, cmd)
		if perr := p.PrintResult(i+1, resp, err); perr != nil {
			return perr
		}
		if err == nil {
			continue
		}
		if isInterrupted(err) {
			return nil
		}
		if !script.ContinueOnError {
			return fmt.Errorf("step %d (%s): %w", i+1, cmd.Kind(), err)
		}
		failed++
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(script.commands))
	}
	if !p.JSON {
		printSystemMessage(p.Out, "Script %q finished: %d step(s).", script.Name, len(script.commands))
	}
	return nil
}
