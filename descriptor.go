package fints

// Descriptor is the common surface of DataElement and DataElementGroup.
// Schemas only accept those two implementations; any other Descriptor is
// rejected when the schema is declared.
type Descriptor interface {
	Required() bool
	MinCount() int
	MaxCount() int
	Doc() string
}

// Attr binds a descriptor to an attribute name inside a Container.
type Attr struct {
	Name       string
	Descriptor Descriptor
}

// A is shorthand for Attr{Name: name, Descriptor: d}.
func A(name string, d Descriptor) Attr { return Attr{Name: name, Descriptor: d} }

// Option configures a descriptor.
type Option func(*descriptorConfig)

type descriptorConfig struct {
	doc       string
	required  bool
	length    int
	maxLength int
	minCount  int
	maxCount  int
	codes     []string

	// group-only options set on an element (or vice versa) are recorded so
	// the declaration can be rejected.
	lengthSet bool
	codesSet  bool
}

func newConfig(opts []Option) descriptorConfig {
	c := descriptorConfig{required: true}
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	return c
}

// Doc sets the documentation label.
func Doc(s string) Option { return func(c *descriptorConfig) { c.doc = s } }

// Optional marks the descriptor as not required.
func Optional() Option { return func(c *descriptorConfig) { c.required = false } }

// Mandatory marks the descriptor as required (the default).
func Mandatory() Option { return func(c *descriptorConfig) { c.required = true } }

// Length fixes the exact token length.
func Length(n int) Option {
	return func(c *descriptorConfig) { c.length = n; c.lengthSet = true }
}

// MaxLength bounds the token length.
func MaxLength(n int) Option {
	return func(c *descriptorConfig) { c.maxLength = n; c.lengthSet = true }
}

// Count sets the occurrence bounds of a repeated descriptor.
func Count(min, max int) Option {
	return func(c *descriptorConfig) { c.minCount = min; c.maxCount = max }
}

// MaxCount sets the upper occurrence bound, keeping the lower bound.
func MaxCount(n int) Option { return func(c *descriptorConfig) { c.maxCount = n } }

// MinCount sets the lower occurrence bound.
func MinCount(n int) Option { return func(c *descriptorConfig) { c.minCount = n } }

// Codes restricts a code element to a closed set of values.
func Codes(values ...string) Option {
	return func(c *descriptorConfig) {
		c.codes = append([]string(nil), values...)
		c.codesSet = true
	}
}

func (c descriptorConfig) counts() (int, int) {
	min, max := c.minCount, c.maxCount
	if max == 0 {
		max = 1
	}
	if min == 0 && c.required {
		min = 1
	}
	return min, max
}

// DataElement describes a single scalar value.
type DataElement struct {
	typ ElementType
	cfg descriptorConfig
	set map[string]struct{}
}

// NewDataElement declares a scalar of the given type. Type defaults for
// length apply when neither Length nor MaxLength is given.
func NewDataElement(t ElementType, opts ...Option) *DataElement {
	d := &DataElement{typ: t, cfg: newConfig(opts)}
	if len(d.cfg.codes) > 0 {
		d.set = make(map[string]struct{}, len(d.cfg.codes))
		for _, v := range d.cfg.codes {
			d.set[v] = struct{}{}
		}
	}
	if d.cfg.length == 0 && d.cfg.maxLength == 0 {
		switch t {
		case TypeID:
			d.cfg.maxLength = 30
		case TypeCur, TypeCtr:
			d.cfg.length = 3
		case TypeJN:
			d.cfg.length = 1
		case TypeDat:
			d.cfg.length = 8
		case TypeTim:
			d.cfg.length = 6
		case TypeWrt:
			d.cfg.maxLength = 15
		}
	}
	return d
}

func Num(opts ...Option) *DataElement  { return NewDataElement(TypeNum, opts...) }
func Dig(opts ...Option) *DataElement  { return NewDataElement(TypeDig, opts...) }
func AN(opts ...Option) *DataElement   { return NewDataElement(TypeAN, opts...) }
func Txt(opts ...Option) *DataElement  { return NewDataElement(TypeTxt, opts...) }
func ID(opts ...Option) *DataElement   { return NewDataElement(TypeID, opts...) }
func Bin(opts ...Option) *DataElement  { return NewDataElement(TypeBin, opts...) }
func Cur(opts ...Option) *DataElement  { return NewDataElement(TypeCur, opts...) }
func JN(opts ...Option) *DataElement   { return NewDataElement(TypeJN, opts...) }
func Dat(opts ...Option) *DataElement  { return NewDataElement(TypeDat, opts...) }
func Tim(opts ...Option) *DataElement  { return NewDataElement(TypeTim, opts...) }
func Ctr(opts ...Option) *DataElement  { return NewDataElement(TypeCtr, opts...) }
func Wrt(opts ...Option) *DataElement  { return NewDataElement(TypeWrt, opts...) }
func Code(opts ...Option) *DataElement { return NewDataElement(TypeCode, opts...) }

func (d *DataElement) Type() ElementType { return d.typ }
func (d *DataElement) Required() bool    { return d.cfg.required }
func (d *DataElement) Doc() string       { return d.cfg.doc }
func (d *DataElement) Length() int       { return d.cfg.length }
func (d *DataElement) MaxLength() int    { return d.cfg.maxLength }

func (d *DataElement) MinCount() int { min, _ := d.cfg.counts(); return min }
func (d *DataElement) MaxCount() int { _, max := d.cfg.counts(); return max }

// Codes returns the closed code set, nil when unrestricted.
func (d *DataElement) Codes() []string { return append([]string(nil), d.cfg.codes...) }

// DataElementGroup describes a composite value with its own Container.
type DataElementGroup struct {
	c   *Container
	cfg descriptorConfig
}

// NewDataElementGroup declares a group of type c.
func NewDataElementGroup(c *Container, opts ...Option) *DataElementGroup {
	return &DataElementGroup{c: c, cfg: newConfig(opts)}
}

// Group is shorthand for NewDataElementGroup.
func Group(c *Container, opts ...Option) *DataElementGroup { return NewDataElementGroup(c, opts...) }

func (g *DataElementGroup) Container() *Container { return g.c }
func (g *DataElementGroup) Required() bool        { return g.cfg.required }
func (g *DataElementGroup) Doc() string           { return g.cfg.doc }

func (g *DataElementGroup) MinCount() int { min, _ := g.cfg.counts(); return min }
func (g *DataElementGroup) MaxCount() int { _, max := g.cfg.counts(); return max }

func repeated(d Descriptor) bool { return d.MaxCount() > 1 }
