package main

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const message = "HNHBK:1:3+000000000100+300+DIALOG1+1'" +
	"HIRMG:2:2+0010::Nachricht entgegengenommen.'" +
	"HKXYZ:3:7+foo:bar+baz'" +
	"HNHBS:4:1+1'"

func TestParse_PrintsJSONLines(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"parse", "-tokens", "-metrics"}, strings.NewReader(message), &out, &errOut, zerolog.Nop())
	require.Equal(t, 0, code, errOut.String())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)

	var first struct {
		Index   int `json:"index"`
		Segment struct {
			Schema string         `json:"schema"`
			Fields map[string]any `json:"fields"`
		} `json:"segment"`
		Tokens [][]string `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, "HNHBK3", first.Segment.Schema)
	assert.Equal(t, "DIALOG1", first.Segment.Fields["dialogue_id"])
	assert.Equal(t, []string{"HNHBK", "1", "3"}, first.Tokens[0])

	var third struct {
		Segment struct {
			Schema string     `json:"schema"`
			Extra  [][]string `json:"extra"`
		} `json:"segment"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &third))
	assert.Equal(t, "FinTS3Segment", third.Segment.Schema)
	assert.Equal(t, [][]string{{"foo", "bar"}, {"baz"}}, third.Segment.Extra)

	assert.Contains(t, errOut.String(), "fints_fallbacks_total{type=HKXYZ,version=7} 1")
	assert.Contains(t, errOut.String(), "fints_segments_parsed_total{result=ok,type=HIRMG,version=2} 1")
}

func TestParse_AcceptsTrailingNewline(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"parse"}, strings.NewReader("HNHBS:5:1+2'\n"), &out, &errOut, zerolog.Nop())
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), `"schema":"HNHBS1"`)
}

func TestParse_ReportsRejectedSegments(t *testing.T) {
	var out, errOut bytes.Buffer
	msg := "HNHBK:1:3+000000000100+1234+DIALOG1+1'"
	code := run([]string{"parse"}, strings.NewReader(msg), &out, &errOut, zerolog.Nop())
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), `"error":`)
	assert.Contains(t, out.String(), "hbci_version")
}

func TestParse_StrictAndStripExclusive(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"parse", "-strict", "-strip"}, strings.NewReader(message), &out, &errOut, zerolog.Nop())
	assert.Equal(t, 2, code)
}

func TestParse_TokenizeError(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"parse"}, strings.NewReader("HNHBK:1:3+@99@abc'"), &out, &errOut, zerolog.Nop())
	assert.Equal(t, 1, code)
	assert.Empty(t, out.String())
}

func TestSchemas_Lists(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run([]string{"schemas"}, nil, &out, &errOut, zerolog.Nop())
	require.Equal(t, 0, code)
	assert.Contains(t, out.String(), "HIRMG2")
	assert.Contains(t, out.String(), "HITANS6")
	assert.NotContains(t, out.String(), "ParameterSegment")
}

func TestRun_Usage(t *testing.T) {
	var errOut bytes.Buffer
	assert.Equal(t, 2, run(nil, nil, nil, &errOut, zerolog.Nop()))
	assert.Contains(t, errOut.String(), "Usage")
	assert.Equal(t, 2, run([]string{"bogus"}, nil, nil, &errOut, zerolog.Nop()))
}
