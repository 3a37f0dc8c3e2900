package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSkipChildren can be returned by a Visitor to skip the children of the
// current container. Walk itself never returns it.
var ErrSkipChildren = errors.New("skip children")

// Role says how an item hangs off its parent.
type Role int

const (
	RoleElement Role = iota
	RoleKey
	RoleValue
)

// PathStep is one hop from a container to a child. Index is the array index
// or the map pair index.
type PathStep struct {
	Role  Role
	Index int
}

func (s PathStep) String() string {
	switch s.Role {
	case RoleKey:
		return "{" + strconv.Itoa(s.Index) + "}.key"
	case RoleValue:
		return "{" + strconv.Itoa(s.Index) + "}.value"
	default:
		return "[" + strconv.Itoa(s.Index) + "]"
	}
}

// Path locates an item from the root. The empty path is the root.
type Path []PathStep

func (p Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, step := range p {
		if step.Role != RoleElement {
			b.WriteByte('.')
		}
		b.WriteString(step.String())
	}
	return b.String()
}

// Depth is the number of containers above the item.
func (p Path) Depth() int {
	return len(p)
}

// Role of the item at the end of the path; the root is an element.
func (p Path) Role() Role {
	if len(p) == 0 {
		return RoleElement
	}
	return p[len(p)-1].Role
}

// Visitor is called once per item in depth-first wire order. Map pairs are
// visited key first, then value. The path slice is reused between calls;
// copy it to retain it.
type Visitor func(path Path, item *Item) error

// Walk visits root and every descendant. It stops at the first error a
// visitor returns, other than ErrSkipChildren.
func Walk(root *Item, fn Visitor) error {
	path := make(Path, 0, 16)
	return walk(path, root, fn)
}

func walk(path Path, item *Item, fn Visitor) error {
	if err := fn(path, item); err != nil {
		if errors.Is(err, ErrSkipChildren) {
			return nil
		}
		return err
	}

	switch item.Kind {
	case Array:
		for i := range item.Items {
			if err := walk(append(path, PathStep{Role: RoleElement, Index: i}), &item.Items[i], fn); err != nil {
				return err
			}
		}
	case Map:
		for i := range item.Pairs {
			if err := walk(append(path, PathStep{Role: RoleKey, Index: i}), &item.Pairs[i].Key, fn); err != nil {
				return err
			}
			if err := walk(append(path, PathStep{Role: RoleValue, Index: i}), &item.Pairs[i].Value, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lookup follows path from root and returns the item it names.
func Lookup(root *Item, path Path) (*Item, bool) {
	cur := root
	for _, step := range path {
		switch {
		case cur.Kind == Array && step.Role == RoleElement:
			if step.Index < 0 || step.Index >= len(cur.Items) {
				return nil, false
			}
			cur = &cur.Items[step.Index]
		case cur.Kind == Map && step.Role != RoleElement:
			if step.Index < 0 || step.Index >= len(cur.Pairs) {
				return nil, false
			}
			if step.Role == RoleKey {
				cur = &cur.Pairs[step.Index].Key
			} else {
				cur = &cur.Pairs[step.Index].Value
			}
		default:
			return nil, false
		}
	}
	return cur, true
}

// ParsePath parses the notation produced by Path.String, e.g. "$[0].{1}.value".
func ParsePath(s string) (Path, error) {
	rest := strings.TrimSpace(s)
	if !strings.HasPrefix(rest, "$") {
		return nil, fmt.Errorf("path %q must start with $", s)
	}
	rest = rest[1:]
	var path Path
	for rest != "" {
		rest = strings.TrimPrefix(rest, ".")
		switch {
		case strings.HasPrefix(rest, "["):
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("path %q: unclosed [", s)
			}
			idx, err := strconv.Atoi(rest[1:end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("path %q: bad index %q", s, rest[1:end])
			}
			path = append(path, PathStep{Role: RoleElement, Index: idx})
			rest = rest[end+1:]
		case strings.HasPrefix(rest, "{"):
			end := strings.IndexByte(rest, '}')
			if end < 0 {
				return nil, fmt.Errorf("path %q: unclosed {", s)
			}
			idx, err := strconv.Atoi(rest[1:end])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("path %q: bad pair index %q", s, rest[1:end])
			}
			rest = rest[end+1:]
			switch {
			case strings.HasPrefix(rest, ".key"):
				path = append(path, PathStep{Role: RoleKey, Index: idx})
				rest = rest[len(".key"):]
			case strings.HasPrefix(rest, ".value"):
				path = append(path, PathStep{Role: RoleValue, Index: idx})
				rest = rest[len(".value"):]
			default:
				return nil, fmt.Errorf("path %q: pair {%d} must be followed by .key or .value", s, idx)
			}
		default:
			return nil, fmt.Errorf("path %q: unexpected %q", s, rest)
		}
	}
	return path, nil
}
