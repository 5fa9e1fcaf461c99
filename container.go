package fints

import (
	"fmt"
	"regexp"
)

var attrName = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Container is a named, ordered list of attributes. It is the body of a
// segment schema and the type of a data element group.
type Container struct {
	name  string
	attrs []Attr
	index map[string]int
}

// NewContainer declares a container. Declaration errors are reported when a
// schema using the container is declared (see NewSchema and Validate).
func NewContainer(name string, attrs ...Attr) *Container {
	c := &Container{name: name, attrs: append([]Attr(nil), attrs...), index: make(map[string]int, len(attrs))}
	for i, a := range attrs {
		if _, dup := c.index[a.Name]; !dup {
			c.index[a.Name] = i
		}
	}
	return c
}

func (c *Container) Name() string { return c.name }

// Attrs returns the attributes in declaration order.
func (c *Container) Attrs() []Attr { return append([]Attr(nil), c.attrs...) }

// Attr looks up an attribute by name.
func (c *Container) Attr(name string) (Attr, bool) {
	i, ok := c.index[name]
	if !ok {
		return Attr{}, false
	}
	return c.attrs[i], true
}

// Validate walks the container and every nested group container, reporting
// the first malformed declaration as a *SchemaDefinitionError.
func (c *Container) Validate() error {
	if c == nil {
		return &SchemaDefinitionError{Reason: "nil container"}
	}
	return c.validate(c.name, rootPath, map[*Container]bool{})
}

func (c *Container) validate(owner string, p pathRef, active map[*Container]bool) error {
	defErr := func(p pathRef, format string, args ...any) error {
		return &SchemaDefinitionError{Schema: owner, Path: p.Pointer(), Reason: fmt.Sprintf(format, args...)}
	}
	if c == nil {
		return defErr(p, "nil container")
	}
	if active[c] {
		return defErr(p, "container %s contains itself", c.name)
	}
	active[c] = true
	defer delete(active, c)

	seen := make(map[string]bool, len(c.attrs))
	for _, a := range c.attrs {
		fp := p.Field(a.Name)
		if !attrName.MatchString(a.Name) {
			return defErr(fp, "invalid attribute name %q", a.Name)
		}
		if seen[a.Name] {
			return defErr(fp, "duplicate attribute %q", a.Name)
		}
		seen[a.Name] = true

		switch d := a.Descriptor.(type) {
		case *DataElement:
			if d == nil {
				return defErr(fp, "nil data element")
			}
			if err := d.cfg.validateCounts(); err != "" {
				return defErr(fp, "%s", err)
			}
			if !d.typ.Known() {
				return defErr(fp, "unknown element type %q", d.typ)
			}
			if d.cfg.length < 0 || d.cfg.maxLength < 0 {
				return defErr(fp, "negative length")
			}
			if d.cfg.length > 0 && d.cfg.maxLength > 0 {
				return defErr(fp, "length and max_length are mutually exclusive")
			}
			if d.cfg.codesSet && d.typ != TypeCode {
				return defErr(fp, "code values on %s element", d.typ)
			}
			if d.cfg.codesSet && len(d.cfg.codes) == 0 {
				return defErr(fp, "empty code set")
			}
		case *DataElementGroup:
			if d == nil {
				return defErr(fp, "nil data element group")
			}
			if err := d.cfg.validateCounts(); err != "" {
				return defErr(fp, "%s", err)
			}
			if d.cfg.lengthSet || d.cfg.codesSet {
				return defErr(fp, "length and code options are not valid on groups")
			}
			if d.c != nil && len(d.c.attrs) == 0 {
				return defErr(fp, "group %s has no attributes", d.c.name)
			}
			if err := d.c.validate(owner, fp, active); err != nil {
				return err
			}
		case nil:
			return defErr(fp, "missing descriptor")
		default:
			return defErr(fp, "%T is not a DataElement or DataElementGroup", a.Descriptor)
		}
	}
	return nil
}

func (c descriptorConfig) validateCounts() string {
	if c.minCount < 0 || c.maxCount < 0 {
		return "negative count"
	}
	if c.maxCount > 0 && c.minCount > c.maxCount {
		return fmt.Sprintf("min_count %d exceeds max_count %d", c.minCount, c.maxCount)
	}
	if c.maxCount == 0 && c.minCount > 1 {
		return fmt.Sprintf("min_count %d without max_count", c.minCount)
	}
	return ""
}

// emptyWidth is the number of elements an absent value of c occupies when it
// is followed by further elements of the same token group.
func (c *Container) emptyWidth() int {
	n := 0
	for _, a := range c.attrs {
		if g, ok := a.Descriptor.(*DataElementGroup); ok {
			n += g.c.emptyWidth()
			continue
		}
		n++
	}
	return n
}
