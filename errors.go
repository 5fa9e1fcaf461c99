package fints

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/reoring/fints/i18n"
)

// Issue codes carried by ValidationError and used as i18n message keys.
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeLength        = "length"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeInvalidFormat = "invalid_format"
	CodeParseError    = "parse_error"
	CodeConflict      = "conflict"
	CodeDefinition    = "definition"
)

// ErrRegistryFrozen is returned by Register once the registry was frozen.
var ErrRegistryFrozen = errors.New("fints: registry is frozen")

// SchemaDefinitionError reports a malformed schema declaration. It is raised
// when the schema is declared, never while processing a message.
type SchemaDefinitionError struct {
	Schema string // schema or container name
	Path   string // attribute path inside the schema, e.g. /reference_message/dialogue_id
	Reason string
}

func (e *SchemaDefinitionError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s: %s", i18n.T(CodeDefinition, nil), e.Schema)
	if e.Path != "" && e.Path != "/" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// ParseError reports a malformed header or token structure.
type ParseError struct {
	Segment string // schema name or raw segment type
	Path    string
	Token   string
	Reason  string
	Err     error
}

func (e *ParseError) Error() string {
	b := &strings.Builder{}
	b.WriteString(i18n.T(CodeParseError, nil))
	if e.Segment != "" {
		fmt.Fprintf(b, " in %s", e.Segment)
	}
	if e.Path != "" && e.Path != "/" {
		fmt.Fprintf(b, " at %s", e.Path)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Token != "" {
		fmt.Fprintf(b, " (token %q)", e.Token)
	}
	if e.Err != nil {
		fmt.Fprintf(b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingFieldError reports a required field without a value.
type MissingFieldError struct {
	Segment string
	Field   string
	Path    string
}

func (e *MissingFieldError) Error() string {
	msg := i18n.T(CodeRequired, map[string]string{"field": e.Field})
	if e.Segment != "" {
		return fmt.Sprintf("%s: %s at %s (field %s)", e.Segment, msg, e.Path, e.Field)
	}
	return fmt.Sprintf("%s at %s (field %s)", msg, e.Path, e.Field)
}

// ValidationError reports a value that violates the rules of its descriptor.
type ValidationError struct {
	Segment string
	Field   string
	Path    string
	Token   string
	Code    string
	Params  map[string]any
}

func (e *ValidationError) Error() string {
	b := &strings.Builder{}
	if e.Segment != "" {
		b.WriteString(e.Segment)
		b.WriteString(": ")
	}
	fmt.Fprintf(b, "%s at %s", i18n.T(e.Code, stringParams(e.Params)), e.Path)
	if e.Field != "" {
		fmt.Fprintf(b, " (field %s)", e.Field)
	}
	if e.Token != "" {
		fmt.Fprintf(b, ": %q", e.Token)
	}
	if len(e.Params) > 0 {
		keys := make([]string, 0, len(e.Params))
		for k := range e.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" [")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(b, "%s=%v", k, e.Params[k])
		}
		b.WriteString("]")
	}
	return b.String()
}

// RegistrationConflictError reports two schemas claiming the same key.
type RegistrationConflictError struct {
	Key      Key
	Existing string
	Incoming string
}

func (e *RegistrationConflictError) Error() string {
	return fmt.Sprintf("%s: %s is already registered by %s (incoming %s)",
		i18n.T(CodeConflict, nil), e.Key, e.Existing, e.Incoming)
}

// AsMissingField extracts a MissingFieldError using errors.As.
func AsMissingField(err error) (*MissingFieldError, bool) {
	var m *MissingFieldError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

// AsValidation extracts a ValidationError using errors.As.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

func stringParams(p map[string]any) map[string]string {
	if len(p) == 0 {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// withSegment stamps the segment name on errors produced below the schema level.
func withSegment(err error, segment string) error {
	switch e := err.(type) {
	case *MissingFieldError:
		if e.Segment == "" {
			e.Segment = segment
		}
	case *ValidationError:
		if e.Segment == "" {
			e.Segment = segment
		}
	case *ParseError:
		if e.Segment == "" {
			e.Segment = segment
		}
	}
	return err
}
