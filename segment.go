package fints

import (
	"strconv"
	"strings"
)

// Segment is an immutable, typed segment instance.
type Segment struct {
	header Header
	schema *Schema
	fields Record
	extra  []TokenGroup
	// received header group of a generic segment; Tokens emits it unchanged
	rawHeader TokenGroup
	// body groups the declared fields occupied when parsed; trailing groups
	// are re-emitted at that position
	bodyLen int
}

// BuildOption configures segment construction.
type BuildOption func(*buildConfig)

type buildConfig struct {
	header *Header
	number int
}

// WithHeader supplies the complete header instead of deriving it.
func WithHeader(h Header) BuildOption {
	return func(c *buildConfig) { hh := h.clone(); c.header = &hh }
}

// WithSegmentNumber sets the position of the segment in its message.
func WithSegmentNumber(n int) BuildOption { return func(c *buildConfig) { c.number = n } }

// New constructs a segment from field values. The header is derived from the
// schema identity unless WithHeader is given. Required fields, value rules
// and occurrence bounds are checked; unknown field names are rejected.
func (s *Schema) New(values Values, opts ...BuildOption) (*Segment, error) {
	var cfg buildConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}

	var h Header
	switch {
	case cfg.header != nil:
		h = *cfg.header
		if s.identified && (h.Type != s.typ || h.Version != s.version) {
			return nil, &ValidationError{Segment: s.name, Field: "header", Path: "/header", Token: h.String(), Code: CodeInvalidFormat,
				Params: map[string]any{"expected": s.Key().String()}}
		}
	case s.identified:
		h = Header{Type: s.typ, Version: s.version}
	default:
		return nil, &MissingFieldError{Segment: s.name, Field: "header", Path: "/header"}
	}
	if cfg.number > 0 {
		h.Number = cfg.number
	}
	if h.Number < 0 {
		return nil, &ValidationError{Segment: s.name, Field: "number", Path: "/header/number", Code: CodeTooShort, Params: map[string]any{"min": 0}}
	}

	if values == nil {
		values = Values{}
	}
	rec, err := s.body.build(values, rootPath)
	if err != nil {
		return nil, withSegment(err, s.name)
	}
	return &Segment{header: h, schema: s, fields: rec}, nil
}

// MustNew is like New but panics on error.
func (s *Schema) MustNew(values Values, opts ...BuildOption) *Segment {
	seg, err := s.New(values, opts...)
	if err != nil {
		panic(err)
	}
	return seg
}

// Parse builds a segment from its token groups; group 0 is the header.
func (s *Schema) Parse(groups []TokenGroup, opts ...ParseOpt) (*Segment, error) {
	if len(groups) == 0 {
		return nil, &ParseError{Segment: s.name, Reason: "no header group"}
	}
	h, err := ParseHeader(groups[0])
	if err != nil {
		return nil, err
	}
	seg, err := s.parseBody(h, groups[1:], resolveParseOpt(opts))
	if err != nil {
		return nil, err
	}
	seg.keepRawHeader(groups[0])
	return seg, nil
}

func (s *Schema) parseBody(h Header, body []TokenGroup, opt ParseOpt) (*Segment, error) {
	if s.identified && h.Key() != s.Key() {
		return nil, &ParseError{Segment: s.name, Path: "/header", Token: h.String(), Reason: "header does not match schema " + s.Key().String()}
	}
	seg := &Segment{header: h, schema: s}
	if s.generic {
		seg.extra = cloneGroups(body)
		return seg, nil
	}

	res, err := s.body.parseGroups(body)
	if err != nil {
		return nil, withSegment(err, s.name)
	}
	seg.fields = res.rec
	seg.bodyLen = res.used

	rest := body[res.used:]
	switch opt.Trailing {
	case TrailingPreserve:
		if len(rest) > 0 {
			seg.extra = cloneGroups(rest)
		}
	case TrailingStrict:
		for i, g := range rest {
			if g.empty() {
				continue
			}
			if res.stop != nil {
				return nil, withSegment(res.stop, s.name)
			}
			return nil, &ParseError{Segment: s.name, Path: "/" + strconv.Itoa(res.used+i+1), Token: firstToken(g), Reason: "unexpected trailing data"}
		}
	}
	return seg, nil
}

func (s *Segment) keepRawHeader(g TokenGroup) {
	if s.schema.generic {
		s.rawHeader = append(TokenGroup(nil), g...)
	}
}

func cloneGroups(groups []TokenGroup) []TokenGroup {
	if len(groups) == 0 {
		return nil
	}
	out := make([]TokenGroup, len(groups))
	for i, g := range groups {
		out[i] = append(TokenGroup(nil), g...)
	}
	return out
}

// Header returns a copy of the segment header.
func (s *Segment) Header() Header { return s.header.clone() }

func (s *Segment) Type() string    { return s.header.Type }
func (s *Segment) Version() int    { return s.header.Version }
func (s *Segment) Number() int     { return s.header.Number }
func (s *Segment) Schema() *Schema { return s.schema }

// Fields returns the typed body values.
func (s *Segment) Fields() Record { return s.fields }

// Extra returns token groups found after the last declared field. For
// segments parsed with the generic schema this is the whole body.
func (s *Segment) Extra() []TokenGroup { return cloneGroups(s.extra) }

// WithNumber returns a copy of the segment renumbered to n.
func (s *Segment) WithNumber(n int) *Segment {
	cp := *s
	cp.header = s.header.clone()
	cp.header.Number = n
	cp.rawHeader = nil
	return &cp
}

// Tokens serializes the segment: header group first, then the body groups,
// then any preserved trailing groups.
func (s *Segment) Tokens() ([]TokenGroup, error) {
	out := []TokenGroup{s.header.Tokens()}
	if s.rawHeader != nil {
		out[0] = append(TokenGroup(nil), s.rawHeader...)
	}
	if !s.schema.generic {
		body, err := s.schema.body.serializeGroups(s.fields)
		if err != nil {
			return nil, withSegment(err, s.schema.name)
		}
		if len(s.extra) > 0 {
			for len(body) < s.bodyLen {
				body = append(body, TokenGroup{""})
			}
		}
		out = append(out, body...)
	}
	return append(out, cloneGroups(s.extra)...), nil
}

// Equal reports whether both segments have the same schema, header, values
// and trailing groups.
func (s *Segment) Equal(o *Segment) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.schema != o.schema || !s.header.equal(o.header) || !s.fields.Equal(o.fields) {
		return false
	}
	if len(s.extra) != len(o.extra) {
		return false
	}
	for i := range s.extra {
		if len(s.extra[i]) != len(o.extra[i]) {
			return false
		}
		for j := range s.extra[i] {
			if s.extra[i][j] != o.extra[i][j] {
				return false
			}
		}
	}
	return true
}

// String renders the segment in wire order without escaping, for logs.
func (s *Segment) String() string {
	groups, err := s.Tokens()
	if err != nil {
		return s.header.String() + " <" + err.Error() + ">"
	}
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = strings.Join(g, ":")
	}
	return strings.Join(parts, "+")
}

// SerializeSegment renders a segment as token groups.
func SerializeSegment(s *Segment) ([]TokenGroup, error) { return s.Tokens() }
