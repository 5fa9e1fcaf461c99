package fints

import (
	"math/big"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/reoring/fints/codec"
)

// Parse converts a wire token into the element's Go value.
func (d *DataElement) Parse(token string) (any, error) { return d.parse(token, rootPath) }

// Serialize renders v as a wire token satisfying the element's rules.
func (d *DataElement) Serialize(v any) (string, error) { return d.serialize(v, rootPath) }

// Validate checks v against type, length and code rules.
func (d *DataElement) Validate(v any) error {
	_, err := d.normalize(v, rootPath)
	return err
}

func (d *DataElement) parse(tok string, p pathRef) (any, error) {
	if err := d.check(tok, p); err != nil {
		return nil, err
	}
	switch d.typ {
	case TypeNum:
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, p.invalid(CodeTooLong, tok, "max", 18)
		}
		return n, nil
	case TypeBin:
		return []byte(tok), nil
	case TypeJN:
		return tok == "J", nil
	case TypeDat:
		return codec.Date().Decode(tok)
	case TypeTim:
		return codec.Clock().Decode(tok)
	}
	return tok, nil
}

func (d *DataElement) serialize(v any, p pathRef) (string, error) {
	tok, err := d.format(v, p)
	if err != nil {
		return "", err
	}
	if err := d.check(tok, p); err != nil {
		return "", err
	}
	return tok, nil
}

// normalize converts an accepted input form into the canonical Go value.
func (d *DataElement) normalize(v any, p pathRef) (any, error) {
	tok, err := d.serialize(v, p)
	if err != nil {
		return nil, err
	}
	return d.parse(tok, p)
}

func (d *DataElement) format(v any, p pathRef) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	switch d.typ {
	case TypeNum:
		switch n := v.(type) {
		case int:
			return strconv.FormatInt(int64(n), 10), nil
		case int8:
			return strconv.FormatInt(int64(n), 10), nil
		case int16:
			return strconv.FormatInt(int64(n), 10), nil
		case int32:
			return strconv.FormatInt(int64(n), 10), nil
		case int64:
			return strconv.FormatInt(n, 10), nil
		case uint:
			return strconv.FormatUint(uint64(n), 10), nil
		case uint8:
			return strconv.FormatUint(uint64(n), 10), nil
		case uint16:
			return strconv.FormatUint(uint64(n), 10), nil
		case uint32:
			return strconv.FormatUint(uint64(n), 10), nil
		case uint64:
			return strconv.FormatUint(n, 10), nil
		}
	case TypeBin:
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
	case TypeJN:
		if b, ok := v.(bool); ok {
			return codec.YesNo().Encode(b)
		}
	case TypeDat:
		if t, ok := v.(time.Time); ok {
			s, err := codec.Date().Encode(t)
			if err != nil {
				return "", p.invalid(CodeInvalidFormat, "", "expected", "date")
			}
			return s, nil
		}
	case TypeTim:
		if t, ok := v.(time.Time); ok {
			return codec.Clock().Encode(t)
		}
	case TypeWrt:
		if r, ok := v.(*big.Rat); ok {
			s, err := codec.Amount().Encode(r)
			if err != nil {
				return "", p.invalid(CodeInvalidFormat, "", "expected", "amount")
			}
			return s, nil
		}
	}
	return "", p.invalid(CodeInvalidType, "", "expected", string(d.typ))
}

// check applies the token rules of the element type and its length bounds.
func (d *DataElement) check(tok string, p pathRef) error {
	switch d.typ {
	case TypeNum:
		if !digits(tok) {
			return p.invalid(CodePattern, tok, "expected", "digits")
		}
		if len(tok) > 1 && tok[0] == '0' {
			return p.invalid(CodeInvalidFormat, tok, "reason", "leading zero")
		}
	case TypeDig, TypeCtr:
		if !digits(tok) {
			return p.invalid(CodePattern, tok, "expected", "digits")
		}
	case TypeCur:
		if !upperAlpha(tok) {
			return p.invalid(CodePattern, tok, "expected", "currency")
		}
	case TypeCode:
		if d.set != nil {
			if _, ok := d.set[tok]; !ok {
				return p.invalid(CodeInvalidEnum, tok, "allowed", d.cfg.codes)
			}
		}
	case TypeJN:
		if _, err := codec.YesNo().Decode(tok); err != nil {
			return p.invalid(CodeInvalidEnum, tok, "allowed", []string{"J", "N"})
		}
	case TypeDat:
		if _, err := codec.Date().Decode(tok); err != nil {
			return p.invalid(CodeInvalidFormat, tok, "expected", "YYYYMMDD")
		}
	case TypeTim:
		if _, err := codec.Clock().Decode(tok); err != nil {
			return p.invalid(CodeInvalidFormat, tok, "expected", "HHMMSS")
		}
	case TypeWrt:
		if !codec.ValidAmount(tok) {
			return p.invalid(CodeInvalidFormat, tok, "expected", "amount")
		}
	}

	n := len(tok)
	if d.typ != TypeBin {
		n = utf8.RuneCountInString(tok)
	}
	if d.cfg.length > 0 && n != d.cfg.length {
		return p.invalid(CodeLength, tok, "length", d.cfg.length, "got", n)
	}
	if d.cfg.maxLength > 0 && n > d.cfg.maxLength {
		return p.invalid(CodeTooLong, tok, "max", d.cfg.maxLength, "got", n)
	}
	return nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func upperAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
