package codec_test

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/reoring/fints/codec"
)

func TestDate_Roundtrip(t *testing.T) {
	c := codec.Date()
	got, err := c.Decode("20240229")
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !got.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date: %v", got)
	}
	out, err := c.Encode(got)
	if err != nil || out != "20240229" {
		t.Fatalf("encode err=%v out=%q", err, out)
	}
}

func TestDate_RejectsInvalid(t *testing.T) {
	for _, tok := range []string{"", "2024022", "20230229", "2024-02-2", "abcdefgh"} {
		if _, err := codec.Date().Decode(tok); !errors.Is(err, codec.ErrFormat) {
			t.Fatalf("expected ErrFormat for %q, got %v", tok, err)
		}
	}
	if _, err := codec.Date().Encode(time.Time{}); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestClock_Roundtrip(t *testing.T) {
	c := codec.Clock()
	got, err := c.Decode("235959")
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if got.Hour() != 23 || got.Minute() != 59 || got.Second() != 59 {
		t.Fatalf("unexpected clock: %v", got)
	}
	out, _ := c.Encode(got)
	if out != "235959" {
		t.Fatalf("roundtrip mismatch: %s", out)
	}
	if _, err := c.Decode("246000"); err == nil {
		t.Fatalf("expected error for invalid clock")
	}
}

func TestNormalize(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2024, 1, 31, 23, 30, 15, 99, loc)
	if d := codec.NormalizeDate(in); !d.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("NormalizeDate: %v", d)
	}
	if c := codec.NormalizeClock(in); c.Hour() != 23 || c.Nanosecond() != 0 || c.Location() != time.UTC {
		t.Fatalf("NormalizeClock: %v", c)
	}
}

func TestYesNo(t *testing.T) {
	c := codec.YesNo()
	if v, err := c.Decode("J"); err != nil || !v {
		t.Fatalf("J: v=%v err=%v", v, err)
	}
	if v, err := c.Decode("N"); err != nil || v {
		t.Fatalf("N: v=%v err=%v", v, err)
	}
	if _, err := c.Decode("j"); err == nil {
		t.Fatalf("expected error for lowercase")
	}
	if s, _ := c.Encode(true); s != "J" {
		t.Fatalf("encode true: %q", s)
	}
}

func TestAmount(t *testing.T) {
	c := codec.Amount()
	cases := map[string]string{
		"1234,56": "1234,56",
		"100,":    "100,",
		"0,5":     "0,5",
		"7,50":    "7,5",
	}
	for in, want := range cases {
		r, err := c.Decode(in)
		if err != nil {
			t.Fatalf("decode %q: %v", in, err)
		}
		out, err := c.Encode(r)
		if err != nil || out != want {
			t.Fatalf("roundtrip %q: got %q err=%v", in, out, err)
		}
	}
	for _, bad := range []string{"", ",5", "12.50", "1,2,3", "1a,0"} {
		if codec.ValidAmount(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
	if _, err := c.Encode(big.NewRat(1, 3)); err == nil {
		t.Fatalf("expected error for non-terminating fraction")
	}
	if _, err := c.Encode(big.NewRat(-1, 2)); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}
