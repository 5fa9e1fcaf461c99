package fints

import (
	"bytes"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// Values carries field values by attribute name when constructing segments.
// Scalars take their Go value or wire string; groups take Values, a
// map[string]any or a Record; repeated attributes take a slice.
type Values map[string]any

// Record is the immutable, declaration-ordered value set of a Container.
// Repeated attributes hold one value per occurrence; absent attributes hold
// nothing and report Has == false.
type Record struct {
	c      *Container
	values []any
}

// Container returns the container the record was built for.
func (r Record) Container() *Container { return r.c }

// IsZero reports whether no attribute carries a value.
func (r Record) IsZero() bool {
	for _, v := range r.values {
		if v != nil {
			return false
		}
	}
	return true
}

func (r Record) lookup(name string) (Descriptor, any) {
	if r.c == nil {
		return nil, nil
	}
	i, ok := r.c.index[name]
	if !ok {
		return nil, nil
	}
	return r.c.attrs[i].Descriptor, r.values[i]
}

// Has reports whether the attribute carries a value.
func (r Record) Has(name string) bool {
	_, v := r.lookup(name)
	return v != nil
}

// Get returns the raw value: the scalar Go value, a Record, or []any for
// repeated attributes. Absent attributes return nil.
func (r Record) Get(name string) any {
	_, v := r.lookup(name)
	if occ, ok := v.([]any); ok {
		return append([]any(nil), occ...)
	}
	if b, ok := v.([]byte); ok {
		return append([]byte(nil), b...)
	}
	return v
}

// Len returns the number of occurrences of the attribute.
func (r Record) Len(name string) int {
	_, v := r.lookup(name)
	switch x := v.(type) {
	case nil:
		return 0
	case []any:
		return len(x)
	}
	return 1
}

// String returns a scalar as its wire token, "" when absent.
func (r Record) String(name string) string {
	d, v := r.lookup(name)
	return scalarString(d, v)
}

// Int returns a num value, 0 when absent.
func (r Record) Int(name string) int64 {
	_, v := r.lookup(name)
	n, _ := v.(int64)
	return n
}

// Bool returns a jn value, false when absent.
func (r Record) Bool(name string) bool {
	_, v := r.lookup(name)
	b, _ := v.(bool)
	return b
}

// Bytes returns a copy of a bin value.
func (r Record) Bytes(name string) []byte {
	_, v := r.lookup(name)
	b, _ := v.([]byte)
	return append([]byte(nil), b...)
}

// Time returns a dat or tim value, the zero time when absent.
func (r Record) Time(name string) time.Time {
	_, v := r.lookup(name)
	t, _ := v.(time.Time)
	return t
}

// Group returns a nested group, the zero Record when absent.
func (r Record) Group(name string) Record {
	_, v := r.lookup(name)
	g, _ := v.(Record)
	return g
}

// Groups returns the occurrences of a repeated group.
func (r Record) Groups(name string) []Record {
	_, v := r.lookup(name)
	occ, _ := v.([]any)
	out := make([]Record, 0, len(occ))
	for _, o := range occ {
		if g, ok := o.(Record); ok {
			out = append(out, g)
		}
	}
	return out
}

// Strings returns the occurrences of a repeated scalar as wire tokens.
func (r Record) Strings(name string) []string {
	d, v := r.lookup(name)
	occ, ok := v.([]any)
	if !ok {
		if v == nil {
			return nil
		}
		return []string{scalarString(d, v)}
	}
	out := make([]string, 0, len(occ))
	for _, o := range occ {
		out = append(out, scalarString(d, o))
	}
	return out
}

func scalarString(d Descriptor, v any) string {
	if v == nil {
		return ""
	}
	if de, ok := d.(*DataElement); ok {
		if tok, err := de.format(v, rootPath); err == nil {
			return tok
		}
	}
	switch x := v.(type) {
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return ""
}

// AsValues converts the record back into construction input.
func (r Record) AsValues() Values {
	out := Values{}
	if r.c == nil {
		return out
	}
	for i, a := range r.c.attrs {
		v := r.values[i]
		if v == nil {
			continue
		}
		out[a.Name] = exportValue(v)
	}
	return out
}

func exportValue(v any) any {
	switch x := v.(type) {
	case Record:
		return x.AsValues()
	case []any:
		out := make([]any, len(x))
		for i, o := range x {
			out[i] = exportValue(o)
		}
		return out
	case []byte:
		return append([]byte(nil), x...)
	}
	return v
}

// Equal reports whether both records belong to the same container and carry
// equal values.
func (r Record) Equal(o Record) bool {
	if r.c != o.c || len(r.values) != len(o.values) {
		return false
	}
	for i := range r.values {
		if !valueEqual(r.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch x := a.(type) {
	case Record:
		y, ok := b.(Record)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !valueEqual(x[i], y[i]) {
				return false
			}
		}
		return true
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	return a == b
}

// build converts construction input into a Record of c.
func (c *Container) build(in any, p pathRef) (Record, error) {
	var m map[string]any
	switch x := in.(type) {
	case Record:
		if x.c != c {
			return Record{}, p.invalid(CodeInvalidType, "", "expected", c.name)
		}
		return x, nil
	case Values:
		m = x
	case map[string]any:
		m = x
	default:
		return Record{}, p.invalid(CodeInvalidType, "", "expected", c.name)
	}

	unknown := make([]string, 0)
	for k := range m {
		if _, ok := c.index[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Record{}, p.Field(unknown[0]).invalid(CodeUnknownKey, "")
	}

	vals := make([]any, len(c.attrs))
	for i, a := range c.attrs {
		fp := p.Field(a.Name)
		raw := m[a.Name]
		min, max := a.Descriptor.MinCount(), a.Descriptor.MaxCount()

		if !repeated(a.Descriptor) {
			if absentInput(raw) {
				if a.Descriptor.Required() {
					return Record{}, fp.missing()
				}
				continue
			}
			v, err := buildValue(a.Descriptor, raw, fp)
			if err != nil {
				return Record{}, err
			}
			if g, ok := v.(Record); ok && g.IsZero() {
				if a.Descriptor.Required() {
					return Record{}, fp.missing()
				}
				continue
			}
			vals[i] = v
			continue
		}

		list := asList(raw)
		if len(list) == 0 {
			if a.Descriptor.Required() || min > 0 {
				return Record{}, fp.missing()
			}
			continue
		}
		if len(list) < min {
			return Record{}, fp.invalid(CodeTooShort, "", "min", min, "got", len(list))
		}
		if len(list) > max {
			return Record{}, fp.invalid(CodeTooLong, "", "max", max, "got", len(list))
		}
		occ := make([]any, len(list))
		for j, item := range list {
			if absentInput(item) {
				return Record{}, fp.Index(j).invalid(CodeInvalidType, "", "reason", "empty occurrence")
			}
			v, err := buildValue(a.Descriptor, item, fp.Index(j))
			if err != nil {
				return Record{}, err
			}
			if g, ok := v.(Record); ok && g.IsZero() {
				return Record{}, fp.Index(j).invalid(CodeInvalidType, "", "reason", "empty occurrence")
			}
			occ[j] = v
		}
		vals[i] = occ
	}
	return Record{c: c, values: vals}, nil
}

func buildValue(d Descriptor, raw any, p pathRef) (any, error) {
	switch x := d.(type) {
	case *DataElement:
		return x.normalize(raw, p)
	case *DataElementGroup:
		return x.c.build(raw, p)
	}
	return nil, p.invalid(CodeInvalidType, "")
}

func absentInput(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []byte:
		return len(x) == 0
	case Values:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	case Record:
		return x.IsZero()
	}
	return false
}

// asList flattens construction input for a repeated attribute. A []byte is a
// single bin value, not a list.
func asList(v any) []any {
	if v == nil {
		return nil
	}
	if _, ok := v.([]byte); ok {
		return []any{v}
	}
	if l, ok := v.([]any); ok {
		return l
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
