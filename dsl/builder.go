package dsl

import (
	fints "github.com/reoring/fints"
)

type fieldList struct {
	attrs []fints.Attr
}

func (l *fieldList) add(name string, d fints.Descriptor) {
	l.attrs = append(l.attrs, fints.A(name, d))
}

type segmentBuilder struct {
	fieldList
	name string
	doc  string
	base *fints.Schema
}

// Segment starts a segment schema declaration. A name like "HIRMG2"
// identifies type and version; other names declare abstract bases.
func Segment(name string) *segmentBuilder {
	return &segmentBuilder{name: name}
}

// Doc sets the schema description.
func (b *segmentBuilder) Doc(s string) *segmentBuilder {
	b.doc = s
	return b
}

// Extends places the fields of base before the fields declared here.
func (b *segmentBuilder) Extends(base *fints.Schema) *segmentBuilder {
	b.base = base
	return b
}

// Field appends an attribute with an existing descriptor.
func (b *segmentBuilder) Field(name string, d fints.Descriptor) *segmentBuilder {
	b.add(name, d)
	return b
}

// Elem appends a data element of type t.
func (b *segmentBuilder) Elem(name string, t fints.ElementType, opts ...fints.Option) *segmentBuilder {
	b.add(name, fints.NewDataElement(t, opts...))
	return b
}

// Group appends a data element group over c.
func (b *segmentBuilder) Group(name string, c *fints.Container, opts ...fints.Option) *segmentBuilder {
	b.add(name, fints.Group(c, opts...))
	return b
}

// Build declares the schema.
func (b *segmentBuilder) Build() (*fints.Schema, error) {
	if b.base != nil {
		return fints.ExtendSchema(b.base, b.name, b.doc, b.attrs...)
	}
	return fints.NewSchema(b.name, b.doc, b.attrs...)
}

// MustBuild is like Build but panics on error.
func (b *segmentBuilder) MustBuild() *fints.Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Register builds the schema and adds it to r.
func (b *segmentBuilder) Register(r *fints.Registry) (*fints.Schema, error) {
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	if err := r.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

type groupBuilder struct {
	fieldList
	name string
}

// Group starts a data element group declaration.
func Group(name string) *groupBuilder {
	return &groupBuilder{name: name}
}

// Extends places the attributes of base before the ones declared here.
func (g *groupBuilder) Extends(base *fints.Container) *groupBuilder {
	if base != nil {
		g.attrs = append(base.Attrs(), g.attrs...)
	}
	return g
}

func (g *groupBuilder) Field(name string, d fints.Descriptor) *groupBuilder {
	g.add(name, d)
	return g
}

func (g *groupBuilder) Elem(name string, t fints.ElementType, opts ...fints.Option) *groupBuilder {
	g.add(name, fints.NewDataElement(t, opts...))
	return g
}

func (g *groupBuilder) Group(name string, c *fints.Container, opts ...fints.Option) *groupBuilder {
	g.add(name, fints.Group(c, opts...))
	return g
}

// Build returns the validated container.
func (g *groupBuilder) Build() (*fints.Container, error) {
	c := fints.NewContainer(g.name, g.attrs...)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustBuild is like Build but panics on error.
func (g *groupBuilder) MustBuild() *fints.Container {
	c, err := g.Build()
	if err != nil {
		panic(err)
	}
	return c
}
