package codec

import (
	"fmt"
	"time"
)

const (
	dateLayout = "20060102"
	timeLayout = "150405"
)

// Date returns a Codec for dat tokens (YYYYMMDD). Decoded values are
// midnight UTC.
func Date() Codec[time.Time] { return dateCodec{} }

// Clock returns a Codec for tim tokens (HHMMSS). Decoded values carry the
// clock on 0000-01-01 UTC.
func Clock() Codec[time.Time] { return clockCodec{} }

type dateCodec struct{}

func (dateCodec) Decode(token string) (time.Time, error) {
	if len(token) != len(dateLayout) || !allDigits(token) {
		return time.Time{}, formatError("date", token)
	}
	t, err := time.ParseInLocation(dateLayout, token, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return t, nil
}

func (dateCodec) Encode(v time.Time) (string, error) {
	if v.IsZero() {
		return "", formatError("date", "")
	}
	if v.Year() < 0 || v.Year() > 9999 {
		return "", formatError("date", v.String())
	}
	return v.Format(dateLayout), nil
}

// NormalizeDate strips clock and location, keeping the calendar day as seen
// in v's own location.
func NormalizeDate(v time.Time) time.Time {
	return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
}

type clockCodec struct{}

func (clockCodec) Decode(token string) (time.Time, error) {
	if len(token) != len(timeLayout) || !allDigits(token) {
		return time.Time{}, formatError("time", token)
	}
	t, err := time.ParseInLocation(timeLayout, token, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return t, nil
}

func (clockCodec) Encode(v time.Time) (string, error) {
	return v.Format(timeLayout), nil
}

// NormalizeClock keeps only the wall clock of v (second precision).
func NormalizeClock(v time.Time) time.Time {
	return time.Date(0, 1, 1, v.Hour(), v.Minute(), v.Second(), 0, time.UTC)
}
