package formatter

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mcncl/mpexplorer/internal/decoder"
	"github.com/mcncl/mpexplorer/internal/models"
)

const indentUnit = "  "

// Options controls tree rendering
type Options struct {
	// Limit is the maximum number of nodes rendered; 0 renders everything
	Limit   int
	Color   bool
	Offsets bool
}

// Formatter renders decoded item trees as indented text
type Formatter struct {
	opts    Options
	palette map[models.Kind]*color.Color
	key     *color.Color
	meta    *color.Color
	failure *color.Color
}

// NewFormatter creates a new Formatter instance
func NewFormatter(opts Options) *Formatter {
	f := &Formatter{
		opts: opts,
		palette: map[models.Kind]*color.Color{
			models.Null:    color.New(color.FgMagenta),
			models.Boolean: color.New(color.FgCyan),
			models.Integer: color.New(color.FgBlue),
			models.Float:   color.New(color.FgBlue),
			models.String:  color.New(color.FgGreen),
			models.Binary:  color.New(color.FgHiMagenta),
			models.Array:   color.New(color.Bold),
			models.Map:     color.New(color.Bold),
		},
		key:     color.New(color.FgYellow),
		meta:    color.New(color.FgHiBlack),
		failure: color.New(color.FgRed),
	}

	// forced per color; color.NoColor is ignored
	all := []*color.Color{f.key, f.meta, f.failure}
	for _, c := range f.palette {
		all = append(all, c)
	}
	for _, c := range all {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// Format renders one item tree. Map keys sit under their map and each
// value sits under its key.
func (f *Formatter) Format(item models.Item) (string, error) {
	var b strings.Builder
	if err := f.writeTree(&b, item, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

// FormatMessages renders a decoded stream, one block per message. Limit
// caps both the messages shown and the items shown per message.
func (f *Formatter) FormatMessages(msgs []decoder.Message) (string, error) {
	var b strings.Builder
	shown := msgs
	if f.opts.Limit > 0 && len(shown) > f.opts.Limit {
		shown = shown[:f.opts.Limit]
	}
	for _, msg := range shown {
		b.WriteString(f.meta.Sprintf("Message %d @%d", msg.Index, msg.Offset))
		b.WriteString("\n")
		if msg.Err != nil {
			b.WriteString(indentUnit)
			b.WriteString(f.failure.Sprint("Error: " + msg.Err.Error()))
			b.WriteString("\n")
			continue
		}
		if err := f.writeTree(&b, msg.Item, 1); err != nil {
			return "", fmt.Errorf("message %d: %w", msg.Index, err)
		}
	}
	if hidden := len(msgs) - len(shown); hidden > 0 {
		b.WriteString(f.meta.Sprintf("... (%d more messages not shown)", hidden))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (f *Formatter) writeTree(b *strings.Builder, root models.Item, baseIndent int) error {
	shown, hidden := 0, 0
	err := models.Walk(&root, func(path models.Path, item *models.Item) error {
		style, ok := f.palette[item.Kind]
		if !ok {
			return fmt.Errorf("unexpected item kind %s at %s", item.Kind, path)
		}
		if f.opts.Limit > 0 && shown >= f.opts.Limit {
			hidden++
			return nil
		}
		shown++
		if path.Role() == models.RoleKey {
			style = f.key
		}
		f.writeLine(b, path, item, style, baseIndent)
		return nil
	})
	if err != nil {
		return err
	}
	if hidden > 0 {
		b.WriteString(strings.Repeat(indentUnit, baseIndent))
		b.WriteString(f.meta.Sprintf("... (%d more items not shown)", hidden))
		b.WriteString("\n")
	}
	return nil
}

func (f *Formatter) writeLine(b *strings.Builder, path models.Path, item *models.Item, style *color.Color, baseIndent int) {
	b.WriteString(strings.Repeat(indentUnit, baseIndent+indentOf(path)))
	b.WriteString(style.Sprint(displayText(item)))

	if f.opts.Offsets {
		b.WriteString(" ")
		b.WriteString(f.meta.Sprintf("@%d+%d", item.Offset, item.Length))
	}
	b.WriteString("\n")
}

// indentOf nests every map value one level below its key
func indentOf(path models.Path) int {
	indent := len(path)
	for _, step := range path {
		if step.Role == models.RoleValue {
			indent++
		}
	}
	return indent
}

// displayText is the item's display string cut at the first line break
func displayText(item *models.Item) string {
	text := item.String()
	if i := strings.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	return text
}

// Describe renders a single item with its path, for selections
func (f *Formatter) Describe(path models.Path, item *models.Item) string {
	return fmt.Sprintf("%s %s %s", path, displayText(item), f.meta.Sprintf("@%d+%d", item.Offset, item.Length))
}
