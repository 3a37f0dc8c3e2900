// Package models holds the decoded MessagePack item tree.
package models

import (
	"fmt"
	"strconv"
)

// Kind is the closed set of item variants a MessagePack message decodes to.
type Kind int

const (
	Null Kind = iota
	Boolean
	Integer
	Float
	String
	Binary
	Array
	Map
)

var kindNames = [...]string{
	Null:    "Null",
	Boolean: "Boolean",
	Integer: "Integer",
	Float:   "Float",
	String:  "String",
	Binary:  "Binary",
	Array:   "Array",
	Map:     "Map",
}

// String returns the type name used in display strings.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsContainer reports whether items of this kind hold children.
func (k Kind) IsContainer() bool {
	return k == Array || k == Map
}

// Item is one decoded node. Which payload fields are meaningful depends on
// Kind:
//
//	Boolean  Bool
//	Integer  Int when Negative, otherwise Uint
//	Float    Float and Precision (32 or 64)
//	String   Str
//	Binary   Bytes
//	Array    Items
//	Map      Pairs
//
// Offset and Length give the byte range of the input buffer that produced
// the item, tag byte and children included.
type Item struct {
	Kind Kind

	Bool      bool
	Negative  bool
	Int       int64
	Uint      uint64
	Float     float64
	Precision int
	Str       string
	Bytes     []byte
	Items     []Item
	Pairs     []Pair

	Offset int
	Length int
}

// Pair is one map entry. Keys may be any item, including containers.
type Pair struct {
	Key   Item
	Value Item
}

func NewNull() Item {
	return Item{Kind: Null}
}

func NewBool(b bool) Item {
	return Item{Kind: Boolean, Bool: b}
}

// NewInt normalizes a signed value: non-negative values are stored in Uint
// so that the same logical integer compares equal regardless of the wire
// width it came from.
func NewInt(v int64) Item {
	if v < 0 {
		return Item{Kind: Integer, Negative: true, Int: v}
	}
	return Item{Kind: Integer, Uint: uint64(v)}
}

func NewUint(v uint64) Item {
	return Item{Kind: Integer, Uint: v}
}

func NewFloat32(f float32) Item {
	return Item{Kind: Float, Float: float64(f), Precision: 32}
}

func NewFloat64(f float64) Item {
	return Item{Kind: Float, Float: f, Precision: 64}
}

func NewString(s string) Item {
	return Item{Kind: String, Str: s}
}

// NewBinary takes ownership of b.
func NewBinary(b []byte) Item {
	return Item{Kind: Binary, Bytes: b}
}

func NewArray(items ...Item) Item {
	if items == nil {
		items = []Item{}
	}
	return Item{Kind: Array, Items: items}
}

func NewMap(pairs ...Pair) Item {
	if pairs == nil {
		pairs = []Pair{}
	}
	return Item{Kind: Map, Pairs: pairs}
}

// Int64 returns the integer value if it fits in an int64.
func (it Item) Int64() (int64, bool) {
	if it.Kind != Integer {
		return 0, false
	}
	if it.Negative {
		return it.Int, true
	}
	if it.Uint > 1<<63-1 {
		return 0, false
	}
	return int64(it.Uint), true
}

// Uint64 returns the integer value if it is non-negative.
func (it Item) Uint64() (uint64, bool) {
	if it.Kind != Integer || it.Negative {
		return 0, false
	}
	return it.Uint, true
}

// Len returns the number of children of a container, zero otherwise.
func (it Item) Len() int {
	switch it.Kind {
	case Array:
		return len(it.Items)
	case Map:
		return len(it.Pairs)
	default:
		return 0
	}
}

// End returns the offset just past the last byte of the item.
func (it Item) End() int {
	return it.Offset + it.Length
}

// ValueString renders the scalar payload without the type name.
func (it Item) ValueString() string {
	switch it.Kind {
	case Null:
		return ""
	case Boolean:
		return strconv.FormatBool(it.Bool)
	case Integer:
		if it.Negative {
			return strconv.FormatInt(it.Int, 10)
		}
		return strconv.FormatUint(it.Uint, 10)
	case Float:
		bits := it.Precision
		if bits != 32 {
			bits = 64
		}
		return strconv.FormatFloat(it.Float, 'g', -1, bits)
	case String:
		return it.Str
	case Binary:
		return fmt.Sprintf("% x", it.Bytes)
	case Array, Map:
		return strconv.Itoa(it.Len()) + " items"
	default:
		panic(fmt.Sprintf("models: unreachable item kind %d", int(it.Kind)))
	}
}

// String returns the one-line display string consumed by presentation
// layers.
func (it Item) String() string {
	switch it.Kind {
	case Null:
		return "[NULL]"
	case Binary:
		return fmt.Sprintf("Binary: %d bytes", len(it.Bytes))
	case Array, Map:
		return fmt.Sprintf("%s (%d items)", it.Kind, it.Len())
	default:
		return fmt.Sprintf("%s: %s", it.Kind, it.ValueString())
	}
}
