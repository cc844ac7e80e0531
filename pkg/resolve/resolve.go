// Package resolve implements key and value resolution over the untyped
// nested mappings returned by the lookup service: priority-ordered prefix-key
// selection for locale/region-tagged fields, and a total, optional-valued
// accessor over a parsed JSON tree.
package resolve

import (
	"sort"
	"strconv"
	"strings"
)

// PrefixKey resolves a key of the form prefix+suffix inside m.
//
// Phase one walks the priority list in order and returns the first
// prefix+candidate present in m. Phase two falls back to any key that starts
// with prefix and carries no further '_'-delimited segment after it, so a
// request for "media_wheel_" never matches a more specific sibling such as
// "media_wheel_carbon_us". Ties in phase two break lexically so resolution
// does not depend on map iteration order.
func PrefixKey(m map[string]any, prefix string, priority []string) (string, bool) {
	for _, candidate := range priority {
		key := prefix + candidate
		if _, ok := m[key]; ok {
			return key, true
		}
	}

	var fallbacks []string
	for key := range m {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if strings.Contains(key[len(prefix):], "_") {
			continue
		}
		fallbacks = append(fallbacks, key)
	}
	if len(fallbacks) == 0 {
		return "", false
	}
	sort.Strings(fallbacks)
	return fallbacks[0], true
}

// Node is an optional-valued view over parsed JSON. Every accessor is total:
// traversing through an absent or mismatched node yields another absent node,
// never a panic. The zero Node is absent.
type Node struct {
	value   any
	present bool
}

// Tree wraps a parsed JSON value as a Node.
func Tree(v any) Node {
	return Node{value: v, present: true}
}

// Absent reports whether the node holds no value.
func (n Node) Absent() bool {
	return !n.present
}

// At walks the given keys through nested objects and returns the node found
// at the end of the path, or an absent node if any segment is missing.
func (n Node) At(keys ...string) Node {
	current := n
	for _, key := range keys {
		obj, ok := current.value.(map[string]any)
		if !current.present || !ok {
			return Node{}
		}
		value, ok := obj[key]
		if !ok {
			return Node{}
		}
		current = Node{value: value, present: true}
	}
	return current
}

// Map returns the node's value as an object, or (nil, false) if the node is
// absent or not an object.
func (n Node) Map() (map[string]any, bool) {
	if !n.present {
		return nil, false
	}
	obj, ok := n.value.(map[string]any)
	return obj, ok
}

// List returns the node's value as an array, or (nil, false).
func (n Node) List() ([]any, bool) {
	if !n.present {
		return nil, false
	}
	list, ok := n.value.([]any)
	return list, ok
}

// Str returns the node's value as a string, or ("", false).
func (n Node) Str() (string, bool) {
	if !n.present {
		return "", false
	}
	s, ok := n.value.(string)
	return s, ok
}

// StrOr returns the node's string value, or def when the node is absent or
// not a string.
func (n Node) StrOr(def string) string {
	if s, ok := n.Str(); ok {
		return s
	}
	return def
}

// Int returns the node's value as an integer. JSON numbers and numeric
// strings both qualify; anything else is (0, false).
func (n Node) Int() (int, bool) {
	if !n.present {
		return 0, false
	}
	switch v := n.value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// Strings returns the node's value as a list of strings. A scalar string
// yields a one-element list; list elements that are not strings are skipped.
func (n Node) Strings() []string {
	if !n.present {
		return nil
	}
	if s, ok := n.Str(); ok {
		return []string{s}
	}
	list, ok := n.List()
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
