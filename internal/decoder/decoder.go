// Package decoder assembles MessagePack tokens into an item tree.
package decoder

import (
	"unicode/utf8"

	"github.com/mcncl/mpexplorer/internal/errors"
	"github.com/mcncl/mpexplorer/internal/models"
	"github.com/mcncl/mpexplorer/internal/reader"
)

// Decode decodes the single message at the start of buf. Bytes after the
// message are ignored; use DecodeFirst to get them back.
func Decode(buf []byte, opts ...Option) (models.Item, error) {
	item, _, err := DecodeFirst(buf, opts...)
	return item, err
}

// DecodeFirst decodes one message and returns the bytes that follow it.
func DecodeFirst(buf []byte, opts ...Option) (models.Item, []byte, error) {
	o := newOptions(opts)
	item, end, err := decodeAt(buf, 0, o)
	if err != nil {
		return models.Item{}, nil, err
	}
	return item, buf[end:], nil
}

// decodeAt decodes the message starting at offset and returns the offset
// just past it.
func decodeAt(buf []byte, offset int, o options) (models.Item, int, error) {
	d := &decoder{
		r:        reader.NewAt(buf, offset, o.endian),
		maxDepth: o.maxDepth,
	}
	item, err := d.decodeItem(0)
	if err != nil {
		return models.Item{}, 0, err
	}
	return item, d.r.Pos(), nil
}

// preallocLimit caps the capacity reserved from a declared container
// length. Larger containers grow as children actually decode.
const preallocLimit = 16

type decoder struct {
	r        *reader.Reader
	maxDepth int
}

// decodeItem reads one complete item. depth is the number of containers
// enclosing it.
func (d *decoder) decodeItem(depth int) (models.Item, error) {
	ok, err := d.r.Read()
	if err != nil {
		return models.Item{}, err
	}
	if !ok {
		return models.Item{}, errors.NewTruncatedError(d.r.Pos(), "expected an item, found end of input")
	}
	tok := d.r.Token()

	var item models.Item
	switch {
	case tok.Tag.IsSigned():
		item = models.NewInt(tok.Int)
	case tok.Tag.IsUnsigned():
		item = models.NewUint(tok.Uint)
	case tok.Tag == reader.Float:
		item = models.NewFloat32(tok.Float32)
	case tok.Tag == reader.Double:
		item = models.NewFloat64(tok.Float64)
	case tok.Tag == reader.True, tok.Tag == reader.False:
		item = models.NewBool(tok.Bool)
	case tok.Tag == reader.Nil:
		item = models.NewNull()
	case tok.Tag.IsRaw():
		item, err = d.decodeRaw(tok)
	case tok.Tag.IsArray():
		item, err = d.decodeArray(tok, depth)
	case tok.Tag.IsMap():
		item, err = d.decodeMap(tok, depth)
	default:
		err = errors.NewUnknownTagError(tok.Offset, byte(tok.Tag))
	}
	if err != nil {
		return models.Item{}, err
	}

	item.Offset = tok.Offset
	item.Length = d.r.Pos() - tok.Offset
	return item, nil
}

// decodeRaw resolves a raw payload to String when it is valid UTF-8 and to
// Binary otherwise.
func (d *decoder) decodeRaw(tok reader.Token) (models.Item, error) {
	if uint64(tok.Length) > uint64(d.r.Remaining()) {
		return models.Item{}, errors.NewInvalidLengthError(tok.Offset,
			"%s declares %d bytes, %d remain", tok.Tag, tok.Length, d.r.Remaining())
	}
	raw, err := d.r.ReadRaw(tok.Length)
	if err != nil {
		return models.Item{}, err
	}
	if utf8.Valid(raw) {
		return models.NewString(string(raw)), nil
	}
	return models.NewBinary(raw), nil
}

func (d *decoder) enter(tok reader.Token, depth int) error {
	if depth+1 > d.maxDepth {
		return errors.NewExcessNestingError(tok.Offset, d.maxDepth)
	}
	return nil
}

func (d *decoder) decodeArray(tok reader.Token, depth int) (models.Item, error) {
	if err := d.enter(tok, depth); err != nil {
		return models.Item{}, err
	}
	// every element needs at least its tag byte
	if uint64(tok.Length) > uint64(d.r.Remaining()) {
		return models.Item{}, errors.NewInvalidLengthError(tok.Offset,
			"%s declares %d items, %d bytes remain", tok.Tag, tok.Length, d.r.Remaining())
	}

	items := make([]models.Item, 0, min(int(tok.Length), preallocLimit))
	for i := uint32(0); i < tok.Length; i++ {
		child, err := d.decodeItem(depth + 1)
		if err != nil {
			return models.Item{}, err
		}
		items = append(items, child)
	}
	return models.NewArray(items...), nil
}

func (d *decoder) decodeMap(tok reader.Token, depth int) (models.Item, error) {
	if err := d.enter(tok, depth); err != nil {
		return models.Item{}, err
	}
	// every pair needs at least two tag bytes
	if 2*uint64(tok.Length) > uint64(d.r.Remaining()) {
		return models.Item{}, errors.NewInvalidLengthError(tok.Offset,
			"%s declares %d pairs, %d bytes remain", tok.Tag, tok.Length, d.r.Remaining())
	}

	pairs := make([]models.Pair, 0, min(int(tok.Length), preallocLimit))
	for i := uint32(0); i < tok.Length; i++ {
		key, err := d.decodeItem(depth + 1)
		if err != nil {
			return models.Item{}, err
		}
		value, err := d.decodeItem(depth + 1)
		if err != nil {
			return models.Item{}, err
		}
		pairs = append(pairs, models.Pair{Key: key, Value: value})
	}
	return models.NewMap(pairs...), nil
}
