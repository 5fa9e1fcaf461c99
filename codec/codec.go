// Package codec converts between FinTS wire tokens and Go domain values for
// the element types whose wire form is not a plain string.
package codec

import (
	"errors"
	"fmt"
)

// Codec converts a wire token to a domain value and back.
// Encode(Decode(tok)) reproduces tok for every canonical token Decode
// accepts (amounts lose trailing fraction zeros).
type Codec[T any] interface {
	Decode(token string) (T, error)
	Encode(v T) (string, error)
}

// ErrFormat is wrapped by every decode failure of this package.
var ErrFormat = errors.New("codec: invalid format")

func formatError(kind, token string) error {
	return fmt.Errorf("%w: %s %q", ErrFormat, kind, token)
}

func allDigits(s string) bool {
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
