// Package reader tokenizes a MessagePack buffer one tag at a time.
package reader

import (
	"encoding/binary"
	"math"

	"github.com/mcncl/mpexplorer/internal/errors"
)

// EndianMode controls how multi-byte fields are converted from wire bytes.
// The wire format is big-endian; the non-default modes exist for producers
// that wrote host order by mistake.
type EndianMode int

const (
	// EndianAuto swaps only when the host is little-endian, which reads
	// correct big-endian data on every host.
	EndianAuto EndianMode = iota
	// EndianNever interprets wire bytes in host order.
	EndianNever
	// EndianAlways reverses wire bytes and then interprets them in host order.
	EndianAlways
)

func (m EndianMode) String() string {
	switch m {
	case EndianAuto:
		return "auto"
	case EndianNever:
		return "never"
	case EndianAlways:
		return "always"
	default:
		return "unknown"
	}
}

var hostLittleEndian = func() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	return b[0] == 1
}()

// HostLittleEndian reports the byte order probed at start-up.
func HostLittleEndian() bool {
	return hostLittleEndian
}

// ByteOrder resolves the mode against the host: reversing bytes and reading
// host order is the same as reading in the opposite order.
func (m EndianMode) ByteOrder() binary.ByteOrder {
	var swap bool
	switch m {
	case EndianNever:
		swap = false
	case EndianAlways:
		swap = true
	default:
		swap = hostLittleEndian
	}
	if hostLittleEndian != swap {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Token is the result of one Read. Which value field is set depends on Tag:
// integer tags fill Int or Uint (positive fixnums fill both), float tags fill
// Float32 or Float64, true/false fill Bool, and raw/array/map tags fill
// Length. Offset is the position of the tag byte.
type Token struct {
	Tag     Tag
	Offset  int
	Uint    uint64
	Int     int64
	Float32 float32
	Float64 float64
	Bool    bool
	Length  uint32
}

// Reader walks a byte slice. It never retains scratch state between reads,
// so separate Readers over separate buffers need no synchronization.
type Reader struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
	tok   Token
}

// New returns a Reader positioned at the start of buf.
func New(buf []byte, mode EndianMode) *Reader {
	return NewAt(buf, 0, mode)
}

// NewAt returns a Reader positioned at offset. Offsets reported by the
// Reader stay absolute to buf.
func NewAt(buf []byte, offset int, mode EndianMode) *Reader {
	if offset < 0 {
		offset = 0
	}
	if offset > len(buf) {
		offset = len(buf)
	}
	return &Reader{buf: buf, pos: offset, order: mode.ByteOrder()}
}

// Pos returns the offset of the next unread byte.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Token returns the token populated by the last successful Read.
func (r *Reader) Token() Token {
	return r.tok
}

// Read consumes one token. It returns false with a nil error only when no
// byte is left to start a token; running out of bytes inside a token is a
// truncated-stream error.
func (r *Reader) Read() (bool, error) {
	if r.pos >= len(r.buf) {
		return false, nil
	}
	start := r.pos
	b := r.buf[r.pos]
	tag, ok := Classify(b)
	if !ok {
		return false, errors.NewUnknownTagError(start, b)
	}
	r.pos++

	tok := Token{Tag: tag, Offset: start}
	switch tag {
	case PositiveFixNum:
		tok.Uint = uint64(b)
		tok.Int = int64(b)
	case NegativeFixNum:
		tok.Int = int64(int8(b))
	case FixRaw:
		tok.Length = uint32(b & 0x1f)
	case FixArray, FixMap:
		tok.Length = uint32(b & 0x0f)
	case Nil:
	case False:
		tok.Bool = false
	case True:
		tok.Bool = true
	case Float:
		field, err := r.field(4, tag)
		if err != nil {
			return false, err
		}
		tok.Float32 = math.Float32frombits(r.order.Uint32(field))
	case Double:
		field, err := r.field(8, tag)
		if err != nil {
			return false, err
		}
		tok.Float64 = math.Float64frombits(r.order.Uint64(field))
	case UInt8, Int8, Raw8:
		field, err := r.field(1, tag)
		if err != nil {
			return false, err
		}
		switch tag {
		case UInt8:
			tok.Uint = uint64(field[0])
		case Int8:
			tok.Int = int64(int8(field[0]))
		default:
			tok.Length = uint32(field[0])
		}
	case UInt16, Int16, Raw16, Array16, Map16:
		field, err := r.field(2, tag)
		if err != nil {
			return false, err
		}
		v := r.order.Uint16(field)
		switch tag {
		case UInt16:
			tok.Uint = uint64(v)
		case Int16:
			tok.Int = int64(int16(v))
		default:
			tok.Length = uint32(v)
		}
	case UInt32, Int32, Raw32, Array32, Map32:
		field, err := r.field(4, tag)
		if err != nil {
			return false, err
		}
		v := r.order.Uint32(field)
		switch tag {
		case UInt32:
			tok.Uint = uint64(v)
		case Int32:
			tok.Int = int64(int32(v))
		default:
			tok.Length = v
		}
	case UInt64, Int64:
		field, err := r.field(8, tag)
		if err != nil {
			return false, err
		}
		v := r.order.Uint64(field)
		if tag == UInt64 {
			tok.Uint = v
		} else {
			tok.Int = int64(v)
		}
	default:
		// Classify accepted a byte this switch does not handle.
		return false, errors.NewUnknownTagError(start, b)
	}

	r.tok = tok
	return true, nil
}

// field consumes the n trailing bytes of the current token.
func (r *Reader) field(n int, tag Tag) ([]byte, error) {
	if r.Remaining() < n {
		return nil, errors.NewTruncatedError(r.pos, "need %d bytes for %s, have %d", n, tag, r.Remaining())
	}
	f := r.buf[r.pos : r.pos+n]
	r.pos += n
	return f, nil
}

// ReadRaw consumes n payload bytes and returns a copy of them, so the
// result never aliases the input buffer.
func (r *Reader) ReadRaw(n uint32) ([]byte, error) {
	if uint64(n) > uint64(r.Remaining()) {
		return nil, errors.NewTruncatedError(r.pos, "need %d payload bytes, have %d", n, r.Remaining())
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:])
	r.pos += int(n)
	return out, nil
}
