package fints

// Positional parse/serialize engine. At segment level every attribute
// consumes whole token groups; inside a group, attributes consume the
// flattened ':' elements, nested groups included.

// elemCursor walks the elements of one token group.
type elemCursor struct {
	toks []string
	pos  int
	stop error // failure that ended the most recent repetition
}

func (c *elemCursor) peek() (string, bool) {
	if c.pos >= len(c.toks) {
		return "", false
	}
	return c.toks[c.pos], true
}

func needsValue(d Descriptor) bool { return d.Required() || d.MinCount() > 0 }

// parseElems consumes the elements of one value of c. present is false when
// all consumed elements were empty; required attributes missing from an
// absent group are not reported.
func (c *Container) parseElems(cur *elemCursor, p pathRef) (Record, bool, error) {
	vals := make([]any, len(c.attrs))
	present := false
	var missing error
	markMissing := func(d Descriptor, fp pathRef) {
		if needsValue(d) && missing == nil {
			missing = fp.missing()
		}
	}

	for i, a := range c.attrs {
		fp := p.Field(a.Name)
		switch d := a.Descriptor.(type) {
		case *DataElement:
			if repeated(d) {
				occ, err := d.repeatElems(cur, fp)
				if err != nil {
					return Record{}, false, err
				}
				if len(occ) == 0 {
					markMissing(d, fp)
					continue
				}
				vals[i], present = occ, true
				continue
			}
			tok, ok := cur.peek()
			if ok {
				cur.pos++
			}
			if tok == "" {
				markMissing(d, fp)
				continue
			}
			v, err := d.parse(tok, fp)
			if err != nil {
				return Record{}, false, err
			}
			vals[i], present = v, true
		case *DataElementGroup:
			if repeated(d) {
				occ, err := d.repeatElems(cur, fp)
				if err != nil {
					return Record{}, false, err
				}
				if len(occ) == 0 {
					markMissing(d, fp)
					continue
				}
				vals[i], present = occ, true
				continue
			}
			rec, sub, err := d.c.parseElems(cur, fp)
			if err != nil {
				return Record{}, false, err
			}
			if !sub {
				markMissing(d, fp)
				continue
			}
			vals[i], present = rec, true
		}
	}
	if !present {
		return Record{}, false, nil
	}
	if missing != nil {
		return Record{}, true, missing
	}
	return Record{c: c, values: vals}, true, nil
}

// repeatElems greedily consumes up to MaxCount elements. A leading empty
// element is the placeholder of zero occurrences and is consumed.
func (d *DataElement) repeatElems(cur *elemCursor, p pathRef) ([]any, error) {
	if tok, ok := cur.peek(); ok && tok == "" {
		cur.pos++
		return nil, nil
	}
	var occ []any
	var stop error
	for len(occ) < d.MaxCount() {
		tok, ok := cur.peek()
		if !ok || tok == "" {
			break
		}
		v, err := d.parse(tok, p.Index(len(occ)))
		if err != nil {
			stop = err
			break
		}
		occ = append(occ, v)
		cur.pos++
	}
	return occ, checkOccurrences(d, occ, stop, cur, p)
}

func (g *DataElementGroup) repeatElems(cur *elemCursor, p pathRef) ([]any, error) {
	var occ []any
	var stop error
	for len(occ) < g.MaxCount() && cur.pos < len(cur.toks) {
		save := cur.pos
		rec, present, err := g.c.parseElems(cur, p.Index(len(occ)))
		if err != nil {
			cur.pos = save
			stop = err
			break
		}
		if !present {
			// the first absent value is the zero-occurrence placeholder
			if len(occ) > 0 {
				cur.pos = save
			}
			break
		}
		occ = append(occ, rec)
	}
	return occ, checkOccurrences(g, occ, stop, cur, p)
}

func checkOccurrences(d Descriptor, occ []any, stop error, cur *elemCursor, p pathRef) error {
	if stop != nil {
		cur.stop = stop
	}
	if len(occ) == 0 {
		if stop != nil && needsValue(d) {
			return stop
		}
		return nil
	}
	if min := d.MinCount(); len(occ) < min {
		if stop != nil {
			return stop
		}
		return p.invalid(CodeTooShort, "", "min", min, "got", len(occ))
	}
	return nil
}

// parseUnit parses one token group as a single value of d.
func parseUnit(d Descriptor, g TokenGroup, p pathRef) (any, bool, error) {
	if g.empty() {
		return nil, false, nil
	}
	switch x := d.(type) {
	case *DataElement:
		if g[0] == "" || len(g) > 1 && !g[1:].empty() {
			return nil, false, p.unparsed(firstToken(g[1:]), "unexpected elements after data element")
		}
		v, err := x.parse(g[0], p)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	case *DataElementGroup:
		cur := &elemCursor{toks: g}
		rec, present, err := x.c.parseElems(cur, p)
		if err != nil {
			return nil, false, err
		}
		if rest := g[cur.pos:]; !rest.empty() {
			pe := p.unparsed(firstToken(rest), "unparsed data")
			pe.Err = cur.stop
			return nil, false, pe
		}
		if !present {
			return nil, false, nil
		}
		return rec, true, nil
	}
	return nil, false, p.invalid(CodeInvalidType, "")
}

func firstToken(g TokenGroup) string {
	for _, t := range g {
		if t != "" {
			return t
		}
	}
	return ""
}

type bodyResult struct {
	rec  Record
	used int
	stop error // repetition failure at position used, if any
}

// parseGroups consumes the body groups of a segment.
func (c *Container) parseGroups(groups []TokenGroup) (bodyResult, error) {
	vals := make([]any, len(c.attrs))
	pos := 0
	var stop error
	stopAt := -1

	for i, a := range c.attrs {
		fp := rootPath.Field(a.Name)
		d := a.Descriptor

		if !repeated(d) {
			if pos >= len(groups) {
				if needsValue(d) {
					return bodyResult{}, fp.missing()
				}
				continue
			}
			v, present, err := parseUnit(d, groups[pos], fp)
			if err != nil {
				return bodyResult{}, err
			}
			pos++
			if !present {
				if needsValue(d) {
					return bodyResult{}, fp.missing()
				}
				continue
			}
			vals[i] = v
			continue
		}

		var occ []any
		var attrStop error
		if pos < len(groups) && groups[pos].empty() {
			pos++
		} else {
			for len(occ) < d.MaxCount() && pos < len(groups) && !groups[pos].empty() {
				v, present, err := parseUnit(d, groups[pos], fp.Index(len(occ)))
				if err != nil {
					attrStop = err
					break
				}
				if !present {
					break
				}
				occ = append(occ, v)
				pos++
			}
		}
		if attrStop != nil {
			stop, stopAt = attrStop, pos
		}
		if len(occ) == 0 {
			if needsValue(d) {
				if attrStop != nil {
					return bodyResult{}, attrStop
				}
				return bodyResult{}, fp.missing()
			}
			continue
		}
		if min := d.MinCount(); len(occ) < min {
			if attrStop != nil {
				return bodyResult{}, attrStop
			}
			return bodyResult{}, fp.invalid(CodeTooShort, "", "min", min, "got", len(occ))
		}
		vals[i] = occ
	}

	res := bodyResult{rec: Record{c: c, values: vals}, used: pos}
	if stopAt == pos {
		res.stop = stop
	}
	return res, nil
}

func (r Record) value(i int) any {
	if i >= len(r.values) {
		return nil
	}
	return r.values[i]
}

// serializeGroups renders the body groups of a segment in declaration order.
func (c *Container) serializeGroups(r Record) ([]TokenGroup, error) {
	out := make([]TokenGroup, 0, len(c.attrs))
	for i, a := range c.attrs {
		fp := rootPath.Field(a.Name)
		v := r.value(i)
		if v == nil {
			out = append(out, TokenGroup{""})
			continue
		}
		if occ, ok := v.([]any); ok {
			for j, o := range occ {
				g, err := serializeUnit(a.Descriptor, o, fp.Index(j))
				if err != nil {
					return nil, err
				}
				out = append(out, g)
			}
			continue
		}
		g, err := serializeUnit(a.Descriptor, v, fp)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	for len(out) > 0 && out[len(out)-1].empty() {
		out = out[:len(out)-1]
	}
	return out, nil
}

func serializeUnit(d Descriptor, v any, p pathRef) (TokenGroup, error) {
	switch x := d.(type) {
	case *DataElement:
		tok, err := x.serialize(v, p)
		if err != nil {
			return nil, err
		}
		return TokenGroup{tok}, nil
	case *DataElementGroup:
		rec, ok := v.(Record)
		if !ok {
			return nil, p.invalid(CodeInvalidType, "", "expected", x.c.name)
		}
		var elems []string
		if err := x.c.serializeElems(rec, p, &elems); err != nil {
			return nil, err
		}
		return trimElems(elems), nil
	}
	return nil, p.invalid(CodeInvalidType, "")
}

func trimElems(elems []string) TokenGroup {
	for len(elems) > 1 && elems[len(elems)-1] == "" {
		elems = elems[:len(elems)-1]
	}
	if len(elems) == 0 {
		return TokenGroup{""}
	}
	return TokenGroup(elems)
}

func (c *Container) serializeElems(r Record, p pathRef, out *[]string) error {
	if r.c != nil && r.c != c {
		return p.invalid(CodeInvalidType, "", "expected", c.name)
	}
	for i, a := range c.attrs {
		fp := p.Field(a.Name)
		v := r.value(i)
		switch d := a.Descriptor.(type) {
		case *DataElement:
			if v == nil {
				*out = append(*out, "")
				continue
			}
			items, ok := v.([]any)
			if !ok {
				items = []any{v}
			}
			for j, item := range items {
				ip := fp
				if ok {
					ip = fp.Index(j)
				}
				tok, err := d.serialize(item, ip)
				if err != nil {
					return err
				}
				*out = append(*out, tok)
			}
		case *DataElementGroup:
			if v == nil {
				for n := d.c.emptyWidth(); n > 0; n-- {
					*out = append(*out, "")
				}
				continue
			}
			items, ok := v.([]any)
			if !ok {
				items = []any{v}
			}
			for j, item := range items {
				rec, isRec := item.(Record)
				if !isRec {
					return fp.invalid(CodeInvalidType, "", "expected", d.c.name)
				}
				ip := fp
				if ok {
					ip = fp.Index(j)
				}
				if err := d.c.serializeElems(rec, ip, out); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Parse parses one token group as a single value of the group.
func (g *DataElementGroup) Parse(tokens TokenGroup) (Record, error) {
	v, present, err := parseUnit(g, tokens, rootPath)
	if err != nil {
		return Record{}, err
	}
	if !present {
		if needsValue(g) {
			return Record{}, rootPath.Field(g.c.name).missing()
		}
		return Record{}, nil
	}
	return v.(Record), nil
}

// Serialize renders one value of the group as a token group.
func (g *DataElementGroup) Serialize(r Record) (TokenGroup, error) {
	return serializeUnit(g, r, rootPath)
}

// Validate checks construction input (Values, map or Record) for the group.
func (g *DataElementGroup) Validate(v any) error {
	_, err := g.c.build(v, rootPath)
	return err
}
