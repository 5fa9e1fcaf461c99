package fints

import (
	"fmt"
	"strconv"
)

// Header is the leading token group of every segment:
// type : number : version [: reference].
type Header struct {
	Type    string
	Number  int  // position in the message; 0 until assigned
	Version int
	// Reference is the number of the segment this one answers, if any.
	Reference *int
}

// Key returns the dispatch key of the header.
func (h Header) Key() Key { return Key{Type: h.Type, Version: h.Version} }

func (h Header) String() string {
	s := fmt.Sprintf("%s:%d:%d", h.Type, h.Number, h.Version)
	if h.Reference != nil {
		s += ":" + strconv.Itoa(*h.Reference)
	}
	return s
}

// ParseHeader reads a header from its token group. The group must already be
// split and unescaped: a type that still carries delimiter or escape
// characters is not detected here.
//
// Number, version and reference must be ASCII digits. An empty number
// position is accepted as 0 (unassigned), matching what Tokens writes for
// segments that were never numbered; an empty reference means none.
func ParseHeader(g TokenGroup) (Header, error) {
	if len(g) < 3 || len(g) > 4 {
		return Header{}, &ParseError{Segment: firstToken(g), Path: "/header", Reason: fmt.Sprintf("header has %d positions, want 3 or 4", len(g))}
	}
	h := Header{Type: g[0]}
	if h.Type == "" {
		return Header{}, &ParseError{Path: "/header/type", Reason: "empty segment type"}
	}

	num := func(pos int, name string) (int, error) {
		tok := g[pos]
		n, err := strconv.Atoi(tok)
		if err != nil || !digits(tok) {
			return 0, &ParseError{Segment: h.Type, Path: "/header/" + name, Token: tok, Reason: "not a non-negative integer"}
		}
		return n, nil
	}

	var err error
	if g[1] != "" {
		if h.Number, err = num(1, "number"); err != nil {
			return Header{}, err
		}
	}
	if h.Version, err = num(2, "version"); err != nil {
		return Header{}, err
	}
	if len(g) == 4 && g[3] != "" {
		ref, err := num(3, "reference")
		if err != nil {
			return Header{}, err
		}
		h.Reference = &ref
	}
	return h, nil
}

// Tokens renders the header as a token group. An unassigned number is
// written as an empty position and an absent reference is omitted.
func (h Header) Tokens() TokenGroup {
	num := ""
	if h.Number > 0 {
		num = strconv.Itoa(h.Number)
	}
	g := TokenGroup{h.Type, num, strconv.Itoa(h.Version)}
	if h.Reference != nil {
		g = append(g, strconv.Itoa(*h.Reference))
	}
	return g
}

func (h Header) clone() Header {
	if h.Reference != nil {
		ref := *h.Reference
		h.Reference = &ref
	}
	return h
}

func (h Header) equal(o Header) bool {
	if h.Type != o.Type || h.Number != o.Number || h.Version != o.Version {
		return false
	}
	if (h.Reference == nil) != (o.Reference == nil) {
		return false
	}
	return h.Reference == nil || *h.Reference == *o.Reference
}
