// Package wire splits FinTS messages into token groups and joins them back.
//
// Segments end with ', groups are separated by + and elements by :.
// A ? escapes the following byte. @n@ introduces n bytes of binary data
// which are taken verbatim.
package wire

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	fints "github.com/reoring/fints"
)

const (
	segmentEnd = '\''
	groupSep   = '+'
	elementSep = ':'
	escape     = '?'
	binaryMark = '@'
)

var (
	ErrUnterminated    = errors.New("wire: unterminated segment")
	ErrDanglingEscape  = errors.New("wire: dangling escape character")
	ErrBadBinaryLength = errors.New("wire: malformed binary length")
	ErrShortBinary     = errors.New("wire: binary data exceeds input")
)

// Split splits a message into segments, each a list of token groups with
// unescaped elements. Whitespace after the final terminator is ignored.
func Split(data []byte) ([][]fints.TokenGroup, error) {
	data = bytes.TrimRight(data, " \t\r\n")
	var (
		segs   [][]fints.TokenGroup
		groups []fints.TokenGroup
		elems  fints.TokenGroup
		cur    []byte
		open   bool
	)
	flushElem := func() {
		elems = append(elems, string(cur))
		cur = cur[:0]
	}
	flushGroup := func() {
		flushElem()
		groups = append(groups, elems)
		elems = nil
	}

	for i := 0; i < len(data); {
		c := data[i]
		open = true
		switch c {
		case escape:
			if i+1 >= len(data) {
				return nil, fmt.Errorf("%w at offset %d", ErrDanglingEscape, i)
			}
			cur = append(cur, data[i+1])
			i += 2
		case binaryMark:
			if len(cur) != 0 {
				cur = append(cur, c)
				i++
				continue
			}
			n, next, err := binaryLength(data, i)
			if err != nil {
				return nil, err
			}
			cur = append(cur, data[next:next+n]...)
			i = next + n
		case elementSep:
			flushElem()
			i++
		case groupSep:
			flushGroup()
			i++
		case segmentEnd:
			flushGroup()
			segs = append(segs, groups)
			groups = nil
			open = false
			i++
		default:
			cur = append(cur, c)
			i++
		}
	}
	if open {
		return nil, ErrUnterminated
	}
	return segs, nil
}

// binaryLength reads @n@ at data[at] and returns n and the offset of the
// first data byte.
func binaryLength(data []byte, at int) (int, int, error) {
	end := bytes.IndexByte(data[at+1:], binaryMark)
	if end < 0 {
		return 0, 0, fmt.Errorf("%w at offset %d", ErrBadBinaryLength, at)
	}
	digits := string(data[at+1 : at+1+end])
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, 0, fmt.Errorf("%w at offset %d: %q", ErrBadBinaryLength, at, digits)
	}
	next := at + end + 2
	if len(data)-next < n {
		return 0, 0, fmt.Errorf("%w at offset %d: need %d bytes", ErrShortBinary, at, n)
	}
	return n, next, nil
}

// Join renders segments. Elements containing control bytes are written as
// binary blocks, all others are escaped.
func Join(segments ...[]fints.TokenGroup) []byte {
	var b bytes.Buffer
	for _, seg := range segments {
		for gi, g := range seg {
			if gi > 0 {
				b.WriteByte(groupSep)
			}
			for ei, tok := range g {
				if ei > 0 {
					b.WriteByte(elementSep)
				}
				writeToken(&b, tok)
			}
		}
		b.WriteByte(segmentEnd)
	}
	return b.Bytes()
}

func writeToken(b *bytes.Buffer, tok string) {
	if binaryToken(tok) {
		b.WriteByte(binaryMark)
		b.WriteString(strconv.Itoa(len(tok)))
		b.WriteByte(binaryMark)
		b.WriteString(tok)
		return
	}
	for i := 0; i < len(tok); i++ {
		switch c := tok[i]; c {
		case segmentEnd, groupSep, elementSep, escape, binaryMark:
			b.WriteByte(escape)
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
}

func binaryToken(tok string) bool {
	for i := 0; i < len(tok); i++ {
		if c := tok[i]; c < 0x20 || c == 0x7f {
			return true
		}
	}
	return false
}
