// Package hexdump renders raw input bytes next to a decoded tree.
package hexdump

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mcncl/mpexplorer/internal/models"
)

const (
	bytesPerLine = 16
	offsetWidth  = 8
)

// Range is a byte span of the input. A zero Length selects nothing.
type Range struct {
	Offset int
	Length int
}

// RangeOf returns the bytes that produced item
func RangeOf(item models.Item) Range {
	return Range{Offset: item.Offset, Length: item.Length}
}

// End returns the offset just past the range
func (r Range) End() int {
	return r.Offset + r.Length
}

// Contains reports whether offset i falls inside the range
func (r Range) Contains(i int) bool {
	return r.Length > 0 && i >= r.Offset && i < r.End()
}

// Dumper renders hex dumps
type Dumper struct {
	color      bool
	offset     *color.Color
	highlight  *color.Color
	unconsumed *color.Color
}

// NewDumper creates a new Dumper instance
func NewDumper(useColor bool) *Dumper {
	d := &Dumper{
		color:      useColor,
		offset:     color.New(color.FgCyan),
		highlight:  color.New(color.FgRed, color.Bold),
		unconsumed: color.New(color.FgHiBlack),
	}
	for _, c := range []*color.Color{d.offset, d.highlight, d.unconsumed} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return d
}

// Dump renders buf. Bytes inside highlight are marked, as are bytes at or
// past consumed, which the decoded messages did not use.
func (d *Dumper) Dump(buf []byte, consumed int, highlight Range) string {
	var out bytes.Buffer
	for start := 0; start < len(buf); start += bytesPerLine {
		end := min(start+bytesPerLine, len(buf))
		d.writeLine(&out, buf[start:end], start, consumed, highlight)
	}
	return out.String()
}

type mark int

const (
	markNone mark = iota
	markHighlight
	markUnconsumed
)

func (d *Dumper) classify(i, consumed int, highlight Range) mark {
	switch {
	case highlight.Contains(i):
		return markHighlight
	case i >= consumed:
		return markUnconsumed
	default:
		return markNone
	}
}

func (d *Dumper) paint(m mark, s string) string {
	switch m {
	case markHighlight:
		return d.highlight.Sprint(s)
	case markUnconsumed:
		return d.unconsumed.Sprint(s)
	default:
		return s
	}
}

func (d *Dumper) writeLine(out *bytes.Buffer, line []byte, start, consumed int, highlight Range) {
	marks := make([]mark, len(line))
	marked := false
	for i := range line {
		marks[i] = d.classify(start+i, consumed, highlight)
		marked = marked || marks[i] != markNone
	}

	out.WriteString(d.offset.Sprintf("%0*x", offsetWidth, start))
	out.WriteString("  ")
	for i := 0; i < bytesPerLine; i++ {
		if i == bytesPerLine/2 {
			out.WriteByte(' ')
		}
		if i >= len(line) {
			out.WriteString("   ")
			continue
		}
		out.WriteString(d.paint(marks[i], fmt.Sprintf("%02x", line[i])))
		out.WriteByte(' ')
	}

	out.WriteString(" |")
	for i, b := range line {
		out.WriteString(d.paint(marks[i], string(printable(b))))
	}
	out.WriteString("|\n")

	if marked && !d.color {
		d.writeMarkers(out, marks)
	}
}

// writeMarkers stands in for colors on plain output
func (d *Dumper) writeMarkers(out *bytes.Buffer, marks []mark) {
	var row strings.Builder
	row.WriteString(strings.Repeat(" ", offsetWidth+2))
	for i, m := range marks {
		if i == bytesPerLine/2 {
			row.WriteByte(' ')
		}
		switch m {
		case markHighlight:
			row.WriteString("^^ ")
		case markUnconsumed:
			row.WriteString("~~ ")
		default:
			row.WriteString("   ")
		}
	}
	out.WriteString(strings.TrimRight(row.String(), " "))
	out.WriteByte('\n')
}

func printable(b byte) byte {
	if b >= 0x20 && b < 0x7f {
		return b
	}
	return '.'
}
