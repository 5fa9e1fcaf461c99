package fints

// TokenGroup is one '+'-separated group of a segment, already split at ':'
// and unescaped. A group without elements, or with only empty elements,
// denotes an absent value.
type TokenGroup []string

func (g TokenGroup) empty() bool {
	for _, t := range g {
		if t != "" {
			return false
		}
	}
	return true
}

// ElementType names the semantic type of a data element.
type ElementType string

const (
	TypeNum  ElementType = "num"  // numeric, no leading zeros
	TypeDig  ElementType = "dig"  // digits, leading zeros significant
	TypeAN   ElementType = "an"   // alphanumeric
	TypeTxt  ElementType = "txt"  // free text
	TypeID   ElementType = "id"   // identifier, an..30
	TypeBin  ElementType = "bin"  // binary
	TypeCur  ElementType = "cur"  // ISO 4217 currency
	TypeCode ElementType = "code" // member of a closed code set
	TypeJN   ElementType = "jn"   // J/N
	TypeDat  ElementType = "dat"  // YYYYMMDD
	TypeTim  ElementType = "tim"  // HHMMSS
	TypeCtr  ElementType = "ctr"  // ISO 3166 numeric country code
	TypeWrt  ElementType = "wrt"  // amount with decimal comma
)

// Known reports whether t is one of the supported element types.
func (t ElementType) Known() bool {
	switch t {
	case TypeNum, TypeDig, TypeAN, TypeTxt, TypeID, TypeBin, TypeCur, TypeCode,
		TypeJN, TypeDat, TypeTim, TypeCtr, TypeWrt:
		return true
	}
	return false
}

// TrailingPolicy controls how token groups after the last declared field are
// handled.
type TrailingPolicy int

const (
	TrailingPreserve TrailingPolicy = iota // Keep them on the segment and re-emit verbatim.
	TrailingStrict                         // Reject them with an error.
	TrailingStrip                          // Drop them.
)

// ParseOpt bundles parsing options.
type ParseOpt struct {
	Trailing TrailingPolicy
}

func resolveParseOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[len(opts)-1]
}
