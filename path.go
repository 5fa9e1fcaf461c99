package fints

import (
	"strconv"
	"strings"
)

// pathRef builds JSON Pointer style field paths (/responses/1/code) in a
// chain-safe way. Error values carry the rendered pointer.
type pathRef struct {
	parts []string
}

var rootPath = pathRef{}

func (p pathRef) Field(name string) pathRef {
	if name == "" {
		return p
	}
	// escape '~' -> '~0', '/' -> '~1' per RFC6901
	esc := strings.ReplaceAll(strings.ReplaceAll(name, "~", "~0"), "/", "~1")
	return pathRef{parts: append(append([]string{}, p.parts...), esc)}
}

func (p pathRef) Index(i int) pathRef {
	return pathRef{parts: append(append([]string{}, p.parts...), strconv.Itoa(i))}
}

func (p pathRef) Pointer() string {
	if len(p.parts) == 0 {
		return "/"
	}
	return "/" + strings.Join(p.parts, "/")
}

// Leaf returns the last field name of the path, skipping indexes.
func (p pathRef) Leaf() string {
	for i := len(p.parts) - 1; i >= 0; i-- {
		if _, err := strconv.Atoi(p.parts[i]); err != nil {
			return p.parts[i]
		}
	}
	return ""
}

func (p pathRef) missing() *MissingFieldError {
	return &MissingFieldError{Field: p.Leaf(), Path: p.Pointer()}
}

func (p pathRef) invalid(code, token string, kv ...any) *ValidationError {
	var params map[string]any
	if len(kv) > 1 {
		params = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				params[k] = kv[i+1]
			}
		}
	}
	return &ValidationError{Field: p.Leaf(), Path: p.Pointer(), Token: token, Code: code, Params: params}
}

func (p pathRef) unparsed(token, reason string) *ParseError {
	return &ParseError{Path: p.Pointer(), Token: token, Reason: reason}
}
