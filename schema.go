package fints

import (
	"fmt"
	"regexp"
	"strconv"
)

var identityPattern = regexp.MustCompile(`^([A-Z]+)(\d+)$`)

// Key identifies a schema in a registry: segment type and version.
type Key struct {
	Type    string
	Version int
}

func (k Key) String() string { return k.Type + strconv.Itoa(k.Version) }

// Schema declares one segment type at one version. Its identity is derived
// from the name: "HNHBK3" has type HNHBK and version 3. Names that do not
// follow that pattern declare abstract schemas which can be extended but not
// registered.
type Schema struct {
	name       string
	doc        string
	typ        string
	version    int
	identified bool
	generic    bool
	body       *Container
}

// NewSchema declares a segment schema. Every attribute, including those of
// nested group containers, is checked here; a malformed declaration yields a
// *SchemaDefinitionError.
func NewSchema(name, doc string, attrs ...Attr) (*Schema, error) {
	if name == "" {
		return nil, &SchemaDefinitionError{Reason: "empty schema name"}
	}
	s := &Schema{name: name, doc: doc, body: NewContainer(name, attrs...)}
	if err := s.body.Validate(); err != nil {
		return nil, err
	}
	if m := identityPattern.FindStringSubmatch(name); m != nil {
		v, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, &SchemaDefinitionError{Schema: name, Reason: fmt.Sprintf("version %s out of range", m[2])}
		}
		s.typ, s.version, s.identified = m[1], v, true
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
func MustSchema(name, doc string, attrs ...Attr) *Schema {
	s, err := NewSchema(name, doc, attrs...)
	if err != nil {
		panic(err)
	}
	return s
}

// ExtendSchema declares a schema whose attributes are base's followed by
// attrs.
func ExtendSchema(base *Schema, name, doc string, attrs ...Attr) (*Schema, error) {
	if base == nil {
		return nil, &SchemaDefinitionError{Schema: name, Reason: "nil base schema"}
	}
	all := append(base.body.Attrs(), attrs...)
	return NewSchema(name, doc, all...)
}

var genericSchema = &Schema{name: "FinTS3Segment", doc: "Unknown segment", generic: true, body: NewContainer("FinTS3Segment")}

// GenericSchema returns the fallback schema used for unregistered segment
// types. It keeps every body token group verbatim.
func GenericSchema() *Schema { return genericSchema }

func (s *Schema) Name() string          { return s.name }
func (s *Schema) Doc() string           { return s.doc }
func (s *Schema) Type() string          { return s.typ }
func (s *Schema) Version() int          { return s.version }
func (s *Schema) Identified() bool      { return s.identified }
func (s *Schema) Generic() bool         { return s.generic }
func (s *Schema) Container() *Container { return s.body }
func (s *Schema) Attrs() []Attr         { return s.body.Attrs() }

// Key returns the registry key. It is the zero Key for abstract schemas.
func (s *Schema) Key() Key {
	if !s.identified {
		return Key{}
	}
	return Key{Type: s.typ, Version: s.version}
}

func (s *Schema) String() string { return s.name }
