// Package sanitizer cleans free text that arrives from agents before it is
// forwarded to a host.
package sanitizer

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize bounds a single string value.
	DefaultMaxInputSize = 16 * 1024
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "DESIGNBRIDGE_MAX_INPUT_SIZE"
	// MaxDepth bounds nesting of argument maps and lists.
	MaxDepth = 16
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
	ErrTooDeep       = errors.New("arguments are nested too deeply")
)

// String enforces the size limit, validates UTF-8 and strips control characters
// other than newline, tab and carriage return.
func String(input string) (string, error) {
	limit := maxInputSize()
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: nothing to strip.
	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// Args returns a copy of args with every string key and value sanitized.
func Args(args map[string]any) (map[string]any, error) {
	out, err := value(args, 0)
	if err != nil {
		return nil, err
	}
	m, _ := out.(map[string]any)
	return m, nil
}

func value(v any, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	switch t := v.(type) {
	case string:
		return String(t)
	case map[string]any:
		if t == nil {
			return map[string]any(nil), nil
		}
		out := make(map[string]any, len(t))
		for k, item := range t {
			key, err := String(k)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			clean, err := value(item, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = clean
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			clean, err := value(item, depth+1)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = clean
		}
		return out, nil
	default:
		return v, nil
	}
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
