// Package catalog declares the FinTS 3.0 segments and data element groups a
// client needs for dialogue setup, security envelopes, parameter data and
// responses. Declarations live in an embedded YAML document and are turned
// into fints schemas at load time.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/reoring/fints"
)

//go:embed segments.yaml
var builtin []byte

type document struct {
	Codes    map[string][]string `yaml:"codes"`
	Groups   map[string]groupDef `yaml:"groups"`
	Segments map[string]groupDef `yaml:"segments"`
}

type groupDef struct {
	Doc     string     `yaml:"doc"`
	Extends string     `yaml:"extends"`
	Fields  []fieldDef `yaml:"fields"`
}

type fieldDef struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Group     string `yaml:"group"`
	Doc       string `yaml:"doc"`
	Required  *bool  `yaml:"required"`
	Length    int    `yaml:"length"`
	MaxLength int    `yaml:"max_length"`
	MinCount  int    `yaml:"min_count"`
	MaxCount  int    `yaml:"max_count"`
	Codes     string `yaml:"codes"`
}

// Catalog holds resolved group containers and segment schemas, abstract
// ones included.
type Catalog struct {
	codes    map[string][]string
	groups   map[string]*fints.Container
	segments map[string]*fints.Schema
}

// Parse decodes a catalog document. Unknown keys, unknown element types,
// dangling references and reference cycles yield *fints.SchemaDefinitionError.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, &fints.SchemaDefinitionError{Schema: "catalog", Reason: err.Error()}
	}
	r := &resolver{
		doc:      doc,
		groups:   map[string]*fints.Container{},
		segments: map[string]*fints.Schema{},
		active:   map[string]bool{},
	}
	for _, name := range sortedKeys(doc.Groups) {
		if _, err := r.group(name); err != nil {
			return nil, err
		}
	}
	for _, name := range sortedKeys(doc.Segments) {
		if _, err := r.segment(name); err != nil {
			return nil, err
		}
	}
	return &Catalog{codes: doc.Codes, groups: r.groups, segments: r.segments}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(data []byte) *Catalog {
	c, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return c
}

var (
	builtinOnce sync.Once
	builtinCat  *Catalog
	builtinErr  error
)

// Builtin returns the embedded catalog.
func Builtin() (*Catalog, error) {
	builtinOnce.Do(func() { builtinCat, builtinErr = Parse(builtin) })
	return builtinCat, builtinErr
}

// Schema returns the named segment schema, abstract or not.
func (c *Catalog) Schema(name string) (*fints.Schema, bool) {
	s, ok := c.segments[name]
	return s, ok
}

// Group returns the named data element group container.
func (c *Catalog) Group(name string) (*fints.Container, bool) {
	g, ok := c.groups[name]
	return g, ok
}

// CodeSet returns the values of a named code set.
func (c *Catalog) CodeSet(name string) ([]string, bool) {
	v, ok := c.codes[name]
	return append([]string(nil), v...), ok
}

// Schemas returns the registrable schemas ordered by name.
func (c *Catalog) Schemas() []*fints.Schema {
	out := make([]*fints.Schema, 0, len(c.segments))
	for _, name := range sortedKeys(c.segments) {
		if s := c.segments[name]; s.Identified() {
			out = append(out, s)
		}
	}
	return out
}

// Register adds every registrable schema to r.
func (c *Catalog) Register(r *fints.Registry) error {
	for _, s := range c.Schemas() {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Option configures Load.
type Option func(*loadConfig)

type loadConfig struct {
	source  []byte
	logger  zerolog.Logger
	regOpts []fints.RegistryOption
}

// WithSource loads the given document instead of the embedded one.
func WithSource(data []byte) Option { return func(c *loadConfig) { c.source = data } }

// WithLogger sets the logger for load summaries. It is also handed to the
// registry.
func WithLogger(l zerolog.Logger) Option { return func(c *loadConfig) { c.logger = l } }

// WithRegistryOptions forwards options to fints.NewRegistry.
func WithRegistryOptions(opts ...fints.RegistryOption) Option {
	return func(c *loadConfig) { c.regOpts = append(c.regOpts, opts...) }
}

// Load builds a frozen registry holding every catalog segment.
func Load(opts ...Option) (*fints.Registry, error) {
	cfg := loadConfig{logger: zerolog.Nop()}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	var (
		cat *Catalog
		err error
	)
	if cfg.source != nil {
		cat, err = Parse(cfg.source)
	} else {
		cat, err = Builtin()
	}
	if err != nil {
		cfg.logger.Error().Err(err).Msg("catalog load failed")
		return nil, err
	}
	reg := fints.NewRegistry(append([]fints.RegistryOption{fints.WithLogger(cfg.logger)}, cfg.regOpts...)...)
	if err := cat.Register(reg); err != nil {
		return nil, err
	}
	reg.Freeze()
	cfg.logger.Debug().
		Int("segments", len(reg.Schemas())).
		Int("groups", len(cat.groups)).
		Int("code_sets", len(cat.codes)).
		Msg("catalog loaded")
	return reg, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *fints.Registry
)

// Default returns a shared frozen registry over the embedded catalog. It
// panics if the embedded catalog is malformed.
func Default() *fints.Registry {
	defaultOnce.Do(func() {
		r, err := Load()
		if err != nil {
			panic(err)
		}
		defaultReg = r
	})
	return defaultReg
}

type resolver struct {
	doc      document
	groups   map[string]*fints.Container
	segments map[string]*fints.Schema
	active   map[string]bool
}

func (r *resolver) group(name string) (*fints.Container, error) {
	if c, ok := r.groups[name]; ok {
		return c, nil
	}
	def, ok := r.doc.Groups[name]
	if !ok {
		return nil, &fints.SchemaDefinitionError{Schema: name, Reason: "unknown group"}
	}
	key := "group:" + name
	if r.active[key] {
		return nil, &fints.SchemaDefinitionError{Schema: name, Reason: "cyclic group reference"}
	}
	r.active[key] = true
	defer delete(r.active, key)

	var attrs []fints.Attr
	if def.Extends != "" {
		base, err := r.group(def.Extends)
		if err != nil {
			return nil, err
		}
		attrs = base.Attrs()
	}
	own, err := r.attrs(name, def.Fields)
	if err != nil {
		return nil, err
	}
	c := fints.NewContainer(name, append(attrs, own...)...)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r.groups[name] = c
	return c, nil
}

func (r *resolver) segment(name string) (*fints.Schema, error) {
	if s, ok := r.segments[name]; ok {
		return s, nil
	}
	def, ok := r.doc.Segments[name]
	if !ok {
		return nil, &fints.SchemaDefinitionError{Schema: name, Reason: "unknown segment"}
	}
	key := "segment:" + name
	if r.active[key] {
		return nil, &fints.SchemaDefinitionError{Schema: name, Reason: "cyclic extends"}
	}
	r.active[key] = true
	defer delete(r.active, key)

	attrs, err := r.attrs(name, def.Fields)
	if err != nil {
		return nil, err
	}
	var s *fints.Schema
	if def.Extends != "" {
		base, err := r.segment(def.Extends)
		if err != nil {
			return nil, err
		}
		s, err = fints.ExtendSchema(base, name, def.Doc, attrs...)
		if err != nil {
			return nil, err
		}
	} else {
		s, err = fints.NewSchema(name, def.Doc, attrs...)
		if err != nil {
			return nil, err
		}
	}
	r.segments[name] = s
	return s, nil
}

func (r *resolver) attrs(owner string, fields []fieldDef) ([]fints.Attr, error) {
	out := make([]fints.Attr, 0, len(fields))
	for _, f := range fields {
		d, err := r.descriptor(owner, f)
		if err != nil {
			return nil, err
		}
		out = append(out, fints.A(f.Name, d))
	}
	return out, nil
}

func (r *resolver) descriptor(owner string, f fieldDef) (fints.Descriptor, error) {
	defErr := func(format string, args ...any) error {
		return &fints.SchemaDefinitionError{Schema: owner, Path: "/" + f.Name, Reason: fmt.Sprintf(format, args...)}
	}
	if (f.Type == "") == (f.Group == "") {
		return nil, defErr("exactly one of type and group is required")
	}

	var opts []fints.Option
	if f.Doc != "" {
		opts = append(opts, fints.Doc(f.Doc))
	}
	if f.Required != nil && !*f.Required {
		opts = append(opts, fints.Optional())
	}
	if f.MinCount != 0 || f.MaxCount != 0 {
		opts = append(opts, fints.Count(f.MinCount, f.MaxCount))
	}

	if f.Group != "" {
		if f.Length != 0 || f.MaxLength != 0 || f.Codes != "" {
			return nil, defErr("length and code options are not valid on groups")
		}
		c, err := r.group(f.Group)
		if err != nil {
			return nil, err
		}
		return fints.Group(c, opts...), nil
	}

	t := fints.ElementType(f.Type)
	if !t.Known() {
		return nil, defErr("unknown element type %q", f.Type)
	}
	if f.Length != 0 {
		opts = append(opts, fints.Length(f.Length))
	}
	if f.MaxLength != 0 {
		opts = append(opts, fints.MaxLength(f.MaxLength))
	}
	if f.Codes != "" {
		set, ok := r.doc.Codes[f.Codes]
		if !ok {
			return nil, defErr("unknown code set %q", f.Codes)
		}
		opts = append(opts, fints.Codes(set...))
	}
	return fints.NewDataElement(t, opts...), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
