package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/designbridge/internal/sanitizer"
	"github.com/aretw0/designbridge/pkg/domain"
)

// Sender is the part of designbridge.Bridge the commands drive.
type Sender interface {
	Send(ctx context.Context, cmd domain.Command) (domain.Response, error)
}

// NormalizeKind accepts kinds in any case, with dashes or underscores.
func NormalizeKind(s string) (domain.Kind, error) {
	return domain.ParseKind(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
}

// ParseCommand builds a command from a kind name and a JSON object of arguments.
// Arguments are sanitized before decoding.
func ParseCommand(kind, rawArgs string) (domain.Command, error) {
	k, err := NormalizeKind(kind)
	if err != nil {
		return domain.Command{}, err
	}

	args := map[string]any{}
	if strings.TrimSpace(rawArgs) != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return domain.Command{}, fmt.Errorf("error parsing arguments JSON: %w", err)
		}
	}
	return buildCommand(k, args)
}

func buildCommand(kind domain.Kind, args map[string]any) (domain.Command, error) {
	clean, err := sanitizer.Args(args)
	if err != nil {
		return domain.Command{}, fmt.Errorf("invalid arguments for %s: %w", kind, err)
	}
	payload, err := domain.PayloadFromMap(kind, clean)
	if err != nil {
		return domain.Command{}, err
	}
	return domain.NewCommand(payload), nil
}

// Send dispatches a single command and prints its result.
func Send(ctx context.Context, s Sender, cmd domain.Command, p Printer) error {
	resp, err := s.Send(ctx, cmd)
	if perr := p.PrintResult(0, resp, err); perr != nil {
		return perr
	}
	return handleExecutionError(err)
}
