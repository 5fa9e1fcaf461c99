package fints

import (
	"bytes"
	"time"

	json "github.com/goccy/go-json"
)

// MarshalJSON renders the record as an object in declaration order. Absent
// attributes are omitted; dat and tim values use ISO notation and bin values
// base64.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	if r.c != nil {
		for i, a := range r.c.attrs {
			v := r.value(i)
			if v == nil {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			k, err := json.Marshal(a.Name)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			b, err := json.Marshal(jsonValue(a.Descriptor, v))
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonValue(d Descriptor, v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, o := range x {
			out[i] = jsonValue(d, o)
		}
		return out
	case time.Time:
		if de, ok := d.(*DataElement); ok && de.typ == TypeTim {
			return x.Format("15:04:05")
		}
		return x.Format("2006-01-02")
	}
	return v
}

type segmentJSON struct {
	Schema    string       `json:"schema"`
	Type      string       `json:"type"`
	Number    int          `json:"number,omitempty"`
	Version   int          `json:"version"`
	Reference *int         `json:"reference,omitempty"`
	Doc       string       `json:"doc,omitempty"`
	Fields    Record       `json:"fields"`
	Extra     []TokenGroup `json:"extra,omitempty"`
}

// MarshalJSON renders the segment header, schema name, fields and trailing
// groups.
func (s *Segment) MarshalJSON() ([]byte, error) {
	return json.Marshal(segmentJSON{
		Schema:    s.schema.name,
		Type:      s.header.Type,
		Number:    s.header.Number,
		Version:   s.header.Version,
		Reference: s.header.Reference,
		Doc:       s.schema.doc,
		Fields:    s.fields,
		Extra:     s.extra,
	})
}
