package domain

import "fmt"

// Data is the opaque result body of a response.
type Data map[string]any

// Response is the host's answer to a Command.
// IsResponse separates answers from commands travelling on the same duplex link.
type Response struct {
	Kind        Kind   `json:"type"`
	Success     bool   `json:"success"`
	Data        Data   `json:"data,omitempty"`
	Error       string `json:"error,omitempty"`
	ID          string `json:"id"`
	IsResponse  bool   `json:"isResponse"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// Succeeded builds a successful response to cmd.
func Succeeded(cmd Command, data Data) Response {
	return Response{
		Kind:       cmd.Kind(),
		Success:    true,
		Data:       data,
		ID:         cmd.ID,
		IsResponse: true,
	}
}

// Failed builds a failed response to cmd.
func Failed(cmd Command, format string, args ...any) Response {
	return Response{
		Kind:       cmd.Kind(),
		Success:    false,
		Error:      fmt.Sprintf(format, args...),
		ID:         cmd.ID,
		IsResponse: true,
	}
}

// Has reports whether key is present.
func (d Data) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// String returns the string stored under key.
func (d Data) String(key string) (string, bool) {
	v, ok := d[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Strings returns the string list stored under key. It accepts both []string
// and the []any produced by encoding/json.
func (d Data) Strings(key string) ([]string, bool) {
	v, ok := d[key]
	if !ok {
		return nil, false
	}
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Bool returns the boolean stored under key.
func (d Data) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}
