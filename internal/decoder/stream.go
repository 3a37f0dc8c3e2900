package decoder

import (
	"fmt"

	"github.com/mcncl/mpexplorer/internal/models"
)

// Message is one entry of a multi-message buffer. Exactly one of Item and
// Err is meaningful.
type Message struct {
	Index  int
	Offset int
	Item   models.Item
	Err    error
}

// End returns the offset just past the message, or Offset+1 for a failed
// message, which is where decoding resumed.
func (m Message) End() int {
	if m.Err != nil {
		return m.Offset + 1
	}
	return m.Item.End()
}

// DecodeAll decodes back-to-back messages until buf is exhausted. Without
// WithContinueOnError the first failure stops decoding and is returned
// together with the messages decoded before it. With it, the failure is
// recorded in the result and decoding resumes one byte after the failed
// message's start.
func DecodeAll(buf []byte, opts ...Option) ([]Message, error) {
	o := newOptions(opts)

	var msgs []Message
	pos := 0
	for pos < len(buf) {
		item, end, err := decodeAt(buf, pos, o)
		if err != nil {
			if !o.continueOnError {
				return msgs, fmt.Errorf("message %d at offset %d: %w", len(msgs), pos, err)
			}
			msgs = append(msgs, Message{Index: len(msgs), Offset: pos, Err: err})
			pos++
			continue
		}
		msgs = append(msgs, Message{Index: len(msgs), Offset: pos, Item: item})
		pos = end
	}
	return msgs, nil
}

// Consumed returns the offset just past the last successfully decoded
// message.
func Consumed(msgs []Message) int {
	end := 0
	for _, m := range msgs {
		if m.Err == nil && m.Item.End() > end {
			end = m.Item.End()
		}
	}
	return end
}
