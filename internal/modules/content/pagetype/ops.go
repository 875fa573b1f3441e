package pagetype

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ListSpec describes one repeating section of an archetype. Path uses
// dot notation; a nested list under another list writes the parent
// index slot as "[]", e.g. "heroSection.slides[].buttons". Min and Max
// bound the list length (Max 0 means unbounded).
type ListSpec struct {
	Path string
	Min  int
	Max  int

	// Item constructs a default element for add operations.
	Item func() interface{}
}

// Op is a single mutation against a repeating section. Path addresses
// a concrete list instance, with explicit indices for any parent lists
// ("heroSection.slides[0].buttons").
type Op struct {
	Action string `json:"action"`
	Path   string `json:"path"`
	Index  *int   `json:"index,omitempty"`
}

const (
	OpAdd    = "add"
	OpRemove = "remove"
)

var pathIndexRe = regexp.MustCompile(`\[\d+\]`)

// generalize rewrites a concrete op path into ListSpec form by
// replacing every explicit index with "[]".
func generalize(path string) string {
	return pathIndexRe.ReplaceAllString(path, "[]")
}

type pathSegment struct {
	key   string
	index int // -1 when the segment carries no index
}

func parsePath(path string) ([]pathSegment, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	parts := strings.Split(path, ".")
	segs := make([]pathSegment, 0, len(parts))
	for _, part := range parts {
		seg := pathSegment{key: part, index: -1}
		if open := strings.Index(part, "["); open >= 0 {
			if !strings.HasSuffix(part, "]") {
				return nil, fmt.Errorf("malformed path segment %q", part)
			}
			idx, err := strconv.Atoi(part[open+1 : len(part)-1])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("malformed index in segment %q", part)
			}
			seg.key = part[:open]
			seg.index = idx
		}
		if seg.key == "" {
			return nil, fmt.Errorf("malformed path segment %q", part)
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// resolveList walks content along segs and returns the parent map and
// final key holding the addressed list, plus the list itself.
func resolveList(content map[string]interface{}, segs []pathSegment) (map[string]interface{}, string, []interface{}, error) {
	cur := content
	for i, seg := range segs {
		raw, ok := cur[seg.key]
		if !ok {
			return nil, "", nil, fmt.Errorf("path element %q not found", seg.key)
		}
		last := i == len(segs)-1
		if last {
			if seg.index >= 0 {
				return nil, "", nil, fmt.Errorf("path must not index the target list")
			}
			list, ok := raw.([]interface{})
			if !ok {
				return nil, "", nil, fmt.Errorf("path element %q is not a list", seg.key)
			}
			return cur, seg.key, list, nil
		}
		if seg.index >= 0 {
			list, ok := raw.([]interface{})
			if !ok {
				return nil, "", nil, fmt.Errorf("path element %q is not a list", seg.key)
			}
			if seg.index >= len(list) {
				return nil, "", nil, fmt.Errorf("index %d out of range for %q", seg.index, seg.key)
			}
			obj, ok := list[seg.index].(map[string]interface{})
			if !ok {
				return nil, "", nil, fmt.Errorf("element %d of %q is not an object", seg.index, seg.key)
			}
			cur = obj
			continue
		}
		obj, ok := raw.(map[string]interface{})
		if !ok {
			return nil, "", nil, fmt.Errorf("path element %q is not an object", seg.key)
		}
		cur = obj
	}
	return nil, "", nil, fmt.Errorf("empty path")
}

// Apply mutates content in place according to op, honoring the
// archetype's list bounds. Element order is preserved: adds append or
// insert at the requested index, removes splice the element out.
func (s Spec) Apply(content map[string]interface{}, op Op) error {
	if op.Action != OpAdd && op.Action != OpRemove {
		return fmt.Errorf("unknown action %q", op.Action)
	}

	var list *ListSpec
	generic := generalize(op.Path)
	for i := range s.Lists {
		if s.Lists[i].Path == generic {
			list = &s.Lists[i]
			break
		}
	}
	if list == nil {
		return fmt.Errorf("%q is not a repeating section of page type %q", op.Path, s.Type)
	}

	segs, err := parsePath(op.Path)
	if err != nil {
		return err
	}
	parent, key, items, err := resolveList(content, segs)
	if err != nil {
		return err
	}

	switch op.Action {
	case OpAdd:
		if list.Max > 0 && len(items) >= list.Max {
			return fmt.Errorf("%q already holds the maximum of %d items", op.Path, list.Max)
		}
		item := toItemValue(list.Item())
		if op.Index == nil || *op.Index >= len(items) {
			items = append(items, item)
		} else if *op.Index < 0 {
			return fmt.Errorf("negative index")
		} else {
			items = append(items[:*op.Index], append([]interface{}{item}, items[*op.Index:]...)...)
		}
	case OpRemove:
		if op.Index == nil {
			return fmt.Errorf("remove requires an index")
		}
		idx := *op.Index
		if idx < 0 || idx >= len(items) {
			return fmt.Errorf("index %d out of range for %q", idx, op.Path)
		}
		if len(items) <= list.Min {
			return fmt.Errorf("%q must keep at least %d items", op.Path, list.Min)
		}
		items = append(items[:idx], items[idx+1:]...)
	}

	parent[key] = items
	return nil
}

// toItemValue converts a typed default element into its JSON document
// form so the stored content stays a plain map/slice tree.
func toItemValue(v interface{}) interface{} {
	switch v.(type) {
	case map[string]interface{}, string, float64, bool, nil:
		return v
	}
	return toMap(v)
}
