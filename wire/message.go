package wire

import (
	"fmt"

	fints "github.com/reoring/fints"
)

// ParseMessage splits data and parses every segment through r.
func ParseMessage(r *fints.Registry, data []byte, opts ...fints.ParseOpt) ([]*fints.Segment, error) {
	raw, err := Split(data)
	if err != nil {
		return nil, err
	}
	segs := make([]*fints.Segment, 0, len(raw))
	for i, groups := range raw {
		seg, err := r.ParseSegment(groups, opts...)
		if err != nil {
			return nil, fmt.Errorf("wire: segment %d: %w", i+1, err)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// Serialize joins the token groups of segs into one message.
func Serialize(segs ...*fints.Segment) ([]byte, error) {
	all := make([][]fints.TokenGroup, 0, len(segs))
	for _, s := range segs {
		groups, err := s.Tokens()
		if err != nil {
			return nil, err
		}
		all = append(all, groups)
	}
	return Join(all...), nil
}

// ParseNested parses the segments carried in the bin attribute name of rec,
// e.g. the data of HNVSD1.
func ParseNested(r *fints.Registry, rec fints.Record, name string, opts ...fints.ParseOpt) ([]*fints.Segment, error) {
	b, ok := rec.Get(name).([]byte)
	if !ok {
		if rec.Has(name) {
			return nil, fmt.Errorf("wire: attribute %s is not binary", name)
		}
		return nil, &fints.MissingFieldError{Field: name, Path: "/" + name}
	}
	segs, err := ParseMessage(r, b, opts...)
	if err != nil {
		return nil, fmt.Errorf("wire: nested %s: %w", name, err)
	}
	return segs, nil
}

// Nest serializes segs into the value of a bin attribute.
func Nest(segs ...*fints.Segment) ([]byte, error) { return Serialize(segs...) }
