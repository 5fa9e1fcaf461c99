package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fints "github.com/reoring/fints"
	"github.com/reoring/fints/wire"
)

func TestSplit_Basic(t *testing.T) {
	segs, err := wire.Split([]byte("HNHBK:1:3+000000000123+300+ABC123+1'HNHBS:2:1+1'"))
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, []fints.TokenGroup{{"HNHBK", "1", "3"}, {"000000000123"}, {"300"}, {"ABC123"}, {"1"}}, segs[0])
	assert.Equal(t, []fints.TokenGroup{{"HNHBS", "2", "1"}, {"1"}}, segs[1])
}

func TestSplit_EscapesAndEmpties(t *testing.T) {
	segs, err := wire.Split([]byte("HIRMS:3:2:4+3050::UPD nicht mehr aktuell?, aktuelle Version enthalten?: ja?+nein?'???@x+'"))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, fints.TokenGroup{"3050", "", "UPD nicht mehr aktuell, aktuelle Version enthalten: ja+nein'?@x"}, segs[0][1])
	assert.Equal(t, fints.TokenGroup{""}, segs[0][2])
}

func TestSplit_Binary(t *testing.T) {
	segs, err := wire.Split([]byte("HNVSD:999:1+@12@HNHBS:2:1'x+'"))
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Equal(t, fints.TokenGroup{"HNHBS:2:1'x+"}, segs[0][1])

	inner, err := wire.Split([]byte("HNHBS:2:1'"))
	require.NoError(t, err)
	assert.Equal(t, "HNHBS", inner[0][0][0])
}

func TestSplit_Errors(t *testing.T) {
	cases := map[string]error{
		"HNHBS:2:1+1":        wire.ErrUnterminated,
		"HNHBS:2:1+1?":       wire.ErrDanglingEscape,
		"HNVSD:9:1+@x@ab'":   wire.ErrBadBinaryLength,
		"HNVSD:9:1+@5":       wire.ErrBadBinaryLength,
		"HNVSD:9:1+@10@abc'": wire.ErrShortBinary,
	}
	for in, want := range cases {
		_, err := wire.Split([]byte(in))
		assert.ErrorIs(t, err, want, in)
	}
	segs, err := wire.Split(nil)
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestSplit_TrailingWhitespace(t *testing.T) {
	segs, err := wire.Split([]byte("HNHBS:5:1+2'\r\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]fints.TokenGroup{{{"HNHBS", "5", "1"}, {"2"}}}, segs)

	_, err = wire.Split([]byte("HNHBS:5:1+2\n"))
	assert.ErrorIs(t, err, wire.ErrUnterminated)
}

func TestJoin_RoundTrip(t *testing.T) {
	in := [][]fints.TokenGroup{
		{{"HIRMG", "2", "2"}, {"0010", "", "Nachricht entgegengenommen: a+b'c?d@e"}},
		{{"HNVSD", "999", "1"}, {"\x00\x01binary'+:"}},
	}
	out := wire.Join(in...)
	back, err := wire.Split(out)
	require.NoError(t, err)
	assert.Equal(t, in, back)
	assert.Contains(t, string(out), "@11@\x00\x01binary'+:")
}

func TestParseMessage_AndSerialize(t *testing.T) {
	hnhbs1 := fints.MustSchema("HNHBS1", "", fints.A("message_number", fints.Num(fints.MaxLength(4))))
	r := fints.NewRegistry()
	r.MustRegister(hnhbs1)
	r.Freeze()

	msg := []byte("HNHBS:1:1+7'XYZ:2:4+a:b+c'")
	segs, err := wire.ParseMessage(r, msg)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, int64(7), segs[0].Fields().Int("message_number"))
	assert.True(t, segs[1].Schema().Generic())

	out, err := wire.Serialize(segs...)
	require.NoError(t, err)
	assert.Equal(t, string(msg), string(out))

	_, err = wire.ParseMessage(r, []byte("HNHBS:1:1+x'"))
	_, ok := fints.AsValidation(err)
	assert.True(t, ok, "expected wrapped ValidationError, got %v", err)
}
