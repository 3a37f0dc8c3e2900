package hexdump

import (
	"strings"
	"testing"

	"github.com/mcncl/mpexplorer/internal/decoder"
	"github.com/mcncl/mpexplorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump_PlainLine(t *testing.T) {
	buf := []byte("0123456789abcdef")

	out := NewDumper(false).Dump(buf, len(buf), Range{})

	expected := "00000000  30 31 32 33 34 35 36 37  38 39 61 62 63 64 65 66  |0123456789abcdef|\n"
	assert.Equal(t, expected, out)
}

func TestDump_MultipleLines(t *testing.T) {
	buf := make([]byte, 20)
	for i := range buf {
		buf[i] = byte(i)
	}

	out := NewDumper(false).Dump(buf, len(buf), Range{})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)

	assert.True(t, strings.HasPrefix(lines[1], "00000010  10 11 12 13 "))
	assert.True(t, strings.HasSuffix(lines[1], "|....|"))
	assert.Equal(t, len(lines[0]), len(lines[1])+12, "short lines keep the gutter aligned")
}

func TestDump_Markers(t *testing.T) {
	// [1, "a"] followed by a stray nil
	buf := []byte{0x92, 0x01, 0xa1, 'a', 0xc0}

	out := NewDumper(false).Dump(buf, 4, Range{Offset: 2, Length: 2})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, "00000000  92 01 a1 61 c0"+strings.Repeat(" ", 36)+"|...a.|", lines[0])
	assert.Equal(t, strings.Repeat(" ", 16)+"^^ ^^ ~~", lines[1])
}

func TestDump_NoMarkerRowWhenNothingMarked(t *testing.T) {
	out := NewDumper(false).Dump([]byte{0xc0}, 1, Range{})
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestDump_Color(t *testing.T) {
	buf := []byte{0x91, 0x01, 0xc3}

	out := NewDumper(true).Dump(buf, 2, Range{Offset: 1, Length: 1})
	assert.Contains(t, out, "\x1b[")
	assert.NotContains(t, out, "^^", "colors replace the marker row")
	assert.NotContains(t, out, "~~")
}

func TestDump_Empty(t *testing.T) {
	assert.Empty(t, NewDumper(false).Dump(nil, 0, Range{}))
}

func TestRangeOf(t *testing.T) {
	// {"k": [1, 2]}
	item, err := decoder.Decode([]byte{0x81, 0xa1, 'k', 0x92, 0x01, 0x02})
	require.NoError(t, err)

	path, err := models.ParsePath("$.{0}.value")
	require.NoError(t, err)
	value, ok := models.Lookup(&item, path)
	require.True(t, ok)

	r := RangeOf(*value)
	assert.Equal(t, Range{Offset: 3, Length: 3}, r)
	assert.Equal(t, 6, r.End())
	assert.True(t, r.Contains(3))
	assert.True(t, r.Contains(5))
	assert.False(t, r.Contains(6))
	assert.False(t, Range{Offset: 3}.Contains(3))
}
