package reader

import "fmt"

// Tag is the logical type of a token. Fixed-range encodings (fixnum,
// fixraw, fixarray, fixmap) collapse to the first byte of their range.
type Tag byte

const (
	PositiveFixNum Tag = 0x00
	FixMap         Tag = 0x80
	FixArray       Tag = 0x90
	FixRaw         Tag = 0xa0
	Nil            Tag = 0xc0
	False          Tag = 0xc2
	True           Tag = 0xc3
	Float          Tag = 0xca
	Double         Tag = 0xcb
	UInt8          Tag = 0xcc
	UInt16         Tag = 0xcd
	UInt32         Tag = 0xce
	UInt64         Tag = 0xcf
	Int8           Tag = 0xd0
	Int16          Tag = 0xd1
	Int32          Tag = 0xd2
	Int64          Tag = 0xd3
	Raw8           Tag = 0xd9
	Raw16          Tag = 0xda
	Raw32          Tag = 0xdb
	Array16        Tag = 0xdc
	Array32        Tag = 0xdd
	Map16          Tag = 0xde
	Map32          Tag = 0xdf
	NegativeFixNum Tag = 0xe0
)

var tagNames = map[Tag]string{
	PositiveFixNum: "positive fixnum",
	FixMap:         "fixmap",
	FixArray:       "fixarray",
	FixRaw:         "fixraw",
	Nil:            "nil",
	False:          "false",
	True:           "true",
	Float:          "float32",
	Double:         "float64",
	UInt8:          "uint8",
	UInt16:         "uint16",
	UInt32:         "uint32",
	UInt64:         "uint64",
	Int8:           "int8",
	Int16:          "int16",
	Int32:          "int32",
	Int64:          "int64",
	Raw8:           "raw8",
	Raw16:          "raw16",
	Raw32:          "raw32",
	Array16:        "array16",
	Array32:        "array32",
	Map16:          "map16",
	Map32:          "map32",
	NegativeFixNum: "negative fixnum",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(0x%02x)", byte(t))
}

// Classify maps a leading byte to its tag. The second result is false for
// bytes outside the grammar.
func Classify(b byte) (Tag, bool) {
	switch {
	case b <= 0x7f:
		return PositiveFixNum, true
	case b >= 0xe0:
		return NegativeFixNum, true
	case b >= 0xa0 && b <= 0xbf:
		return FixRaw, true
	case b >= 0x90 && b <= 0x9f:
		return FixArray, true
	case b >= 0x80 && b <= 0x8f:
		return FixMap, true
	}
	t := Tag(b)
	_, ok := tagNames[t]
	return t, ok
}

// IsUnsigned reports tags whose payload is read into Token.Uint.
func (t Tag) IsUnsigned() bool {
	switch t {
	case UInt8, UInt16, UInt32, UInt64:
		return true
	}
	return false
}

// IsSigned reports tags whose payload is read into Token.Int.
func (t Tag) IsSigned() bool {
	switch t {
	case PositiveFixNum, NegativeFixNum, Int8, Int16, Int32, Int64:
		return true
	}
	return false
}

func (t Tag) IsRaw() bool {
	return t == FixRaw || t == Raw8 || t == Raw16 || t == Raw32
}

func (t Tag) IsArray() bool {
	return t == FixArray || t == Array16 || t == Array32
}

func (t Tag) IsMap() bool {
	return t == FixMap || t == Map16 || t == Map32
}
