package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/designbridge/pkg/domain"
)

// Printer writes command results either as rendered markdown or as JSON lines.
type Printer struct {
	Out    io.Writer
	JSON   bool
	Render func(string) (string, error)
}

// result is the JSON line written per command.
type result struct {
	Step     int              `json:"step,omitempty"`
	Response *domain.Response `json:"response,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// PrintResult reports one settled command. step is zero outside of scripts.
func (p Printer) PrintResult(step int, resp domain.Response, err error) error {
	if p.JSON {
		r := result{Step: step}
		if resp.ID != "" {
			r.Response = &resp
		}
		if err != nil {
			r.Error = err.Error()
		}
		return json.NewEncoder(p.Out).Encode(r)
	}

	var md strings.Builder
	if step > 0 {
		fmt.Fprintf(&md, "### Step %d\n\n", step)
	}
	var merr *domain.MutationError
	switch {
	case err == nil, errors.As(err, &merr):
		md.WriteString(summaryMarkdown(resp.Summary()))
	default:
		fmt.Fprintf(&md, "**Error:** %s\n", err)
	}
	return p.render(md.String())
}

func (p Printer) render(markdown string) error {
	render := p.Render
	if render == nil {
		render = func(s string) (string, error) { return s, nil }
	}
	out, err := render(markdown)
	if err != nil {
		out = markdown
	}
	_, err = io.WriteString(p.Out, out)
	return err
}

// summaryMarkdown keeps the summary headline as prose and fences its data block.
func summaryMarkdown(summary string) string {
	headline, data, found := strings.Cut(summary, "\n\n")
	if !found || strings.TrimSpace(data) == "" {
		return headline + "\n"
	}
	return fmt.Sprintf("%s\n\n```json\n%s\n```\n", headline, data)
}
