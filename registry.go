package fints

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Observer receives dispatch and parse outcomes, e.g. for metrics.
type Observer interface {
	SegmentParsed(k Key, generic bool, err error)
}

// Registry maps (type, version) keys to schemas. It is populated during
// startup, then frozen; after Freeze lookups take no locks.
type Registry struct {
	mu       sync.Mutex
	schemas  map[Key]*Schema
	frozen   atomic.Bool
	fallback *Schema
	logger   zerolog.Logger
	observer Observer
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l zerolog.Logger) RegistryOption { return func(r *Registry) { r.logger = l } }

// WithObserver installs an Observer notified after every ParseSegment.
func WithObserver(o Observer) RegistryOption { return func(r *Registry) { r.observer = o } }

// WithFallback replaces the schema returned for unknown keys with the generic
// schema or an abstract schema. Nil and identified schemas are ignored.
func WithFallback(s *Schema) RegistryOption {
	return func(r *Registry) {
		if s != nil && !s.identified {
			r.fallback = s
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		schemas:  map[Key]*Schema{},
		fallback: GenericSchema(),
		logger:   zerolog.Nop(),
	}
	for _, o := range opts {
		if o != nil {
			o(r)
		}
	}
	return r
}

// Register adds s under its derived key. A second schema for the same key is
// rejected with *RegistrationConflictError; registering the same schema twice
// is a no-op.
func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return &SchemaDefinitionError{Reason: "nil schema"}
	}
	if !s.identified {
		return &SchemaDefinitionError{Schema: s.name, Reason: "name does not derive a segment type and version"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	k := s.Key()
	if prev, ok := r.schemas[k]; ok {
		if prev == s {
			return nil
		}
		return &RegistrationConflictError{Key: k, Existing: prev.name, Incoming: s.name}
	}
	r.schemas[k] = s
	r.logger.Debug().Str("type", k.Type).Int("version", k.Version).Str("schema", s.name).Msg("schema registered")
	return nil
}

// MustRegister registers all schemas and panics on the first error.
func (r *Registry) MustRegister(schemas ...*Schema) {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Freeze ends the registration phase.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen.Store(true)
	r.mu.Unlock()
}

func (r *Registry) Frozen() bool { return r.frozen.Load() }

// Lookup returns the schema registered for k.
func (r *Registry) Lookup(k Key) (*Schema, bool) {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	s, ok := r.schemas[k]
	return s, ok
}

// Dispatch returns the schema for the header's (type, version), or the
// fallback schema when none is registered.
func (r *Registry) Dispatch(h Header) *Schema {
	if s, ok := r.Lookup(h.Key()); ok {
		return s
	}
	r.logger.Debug().Str("type", h.Type).Int("version", h.Version).Msg("no schema registered, using fallback")
	return r.fallback
}

// Schemas returns the registered schemas ordered by type, then version.
func (r *Registry) Schemas() []*Schema {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	out := make([]*Schema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].typ != out[j].typ {
			return out[i].typ < out[j].typ
		}
		return out[i].version < out[j].version
	})
	return out
}

// ParseSegment parses the header, dispatches and parses the body.
func (r *Registry) ParseSegment(groups []TokenGroup, opts ...ParseOpt) (*Segment, error) {
	if len(groups) == 0 {
		return nil, &ParseError{Reason: "empty segment"}
	}
	h, err := ParseHeader(groups[0])
	if err != nil {
		r.observe(Key{Type: firstToken(groups[0])}, false, err)
		return nil, err
	}
	s := r.Dispatch(h)
	seg, err := s.parseBody(h, groups[1:], resolveParseOpt(opts))
	r.observe(h.Key(), s.generic, err)
	if err != nil {
		r.logger.Debug().Err(err).Str("schema", s.name).Msg("segment rejected")
		return nil, err
	}
	seg.keepRawHeader(groups[0])
	return seg, nil
}

func (r *Registry) observe(k Key, generic bool, err error) {
	if r.observer != nil {
		r.observer.SegmentParsed(k, generic, err)
	}
}

var defaultRegistry = NewRegistry()

// Default returns the package-level registry.
func Default() *Registry { return defaultRegistry }

// Register adds s to the default registry.
func Register(s *Schema) error { return defaultRegistry.Register(s) }

// Dispatch resolves h against the default registry.
func Dispatch(h Header) *Schema { return defaultRegistry.Dispatch(h) }

// ParseSegment parses groups against the default registry.
func ParseSegment(groups []TokenGroup, opts ...ParseOpt) (*Segment, error) {
	return defaultRegistry.ParseSegment(groups, opts...)
}
