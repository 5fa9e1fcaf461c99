package codec

import (
	"math/big"
	"strings"
)

// Amount returns a Codec for wrt tokens ("1234,5"). The decimal comma is
// mandatory and the fraction may be empty ("100,").
func Amount() Codec[*big.Rat] { return amountCodec{} }

type amountCodec struct{}

// ValidAmount reports whether token is a well-formed wrt token.
func ValidAmount(token string) bool {
	i := strings.IndexByte(token, ',')
	if i <= 0 || strings.Count(token, ",") != 1 {
		return false
	}
	if !allDigits(token[:i]) {
		return false
	}
	frac := token[i+1:]
	return frac == "" || allDigits(frac)
}

func (amountCodec) Decode(token string) (*big.Rat, error) {
	if !ValidAmount(token) {
		return nil, formatError("amount", token)
	}
	r, ok := new(big.Rat).SetString(strings.Replace(token, ",", ".", 1))
	if !ok {
		return nil, formatError("amount", token)
	}
	return r, nil
}

// Encode renders v with the shortest exact fraction and a trailing comma for
// whole numbers. Negative and non-terminating values are rejected.
func (amountCodec) Encode(v *big.Rat) (string, error) {
	if v == nil {
		return "", formatError("amount", "<nil>")
	}
	if v.Sign() < 0 {
		return "", formatError("amount", v.String())
	}
	prec, exact := v.FloatPrec()
	if !exact {
		return "", formatError("amount", v.String())
	}
	s := v.FloatString(prec)
	if prec == 0 {
		return s + ",", nil
	}
	return strings.Replace(s, ".", ",", 1), nil
}
