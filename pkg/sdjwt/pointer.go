package sdjwt

import (
	"fmt"
	"strconv"
	"strings"
)

// splitPointer parses an RFC 6901 JSON pointer ("/a/b/0/c") into its
// unescaped segments. The root pointer "" yields no segments.
func splitPointer(pointer string) ([]string, error) {
	if pointer == "" {
		return nil, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("pointer must start with '/': %q", pointer)
	}
	raw := strings.Split(pointer[1:], "/")
	segments := make([]string, len(raw))
	for i, s := range raw {
		s = strings.ReplaceAll(s, "~1", "/")
		s = strings.ReplaceAll(s, "~0", "~")
		segments[i] = s
	}
	return segments, nil
}

// escapePointerSegment escapes a single segment for inclusion in a pointer.
func escapePointerSegment(s string) string {
	s = strings.ReplaceAll(s, "~", "~0")
	s = strings.ReplaceAll(s, "/", "~1")
	return s
}

// joinPointer appends a segment to a parent pointer path.
func joinPointer(parent, segment string) string {
	return parent + "/" + escapePointerSegment(segment)
}

// joinPointerIndex appends a numeric array index to a parent pointer path.
func joinPointerIndex(parent string, index int) string {
	return parent + "/" + strconv.Itoa(index)
}

// navigateToParent walks all but the last segment of a pointer starting
// from root, returning the container the final segment lives in.
func navigateToParent(root map[string]any, segments []string) (parent any, lastSegment string, err error) {
	if len(segments) == 0 {
		return nil, "", fmt.Errorf("pointer must reference a field, not the document root")
	}

	var cur any = root
	for _, seg := range segments[:len(segments)-1] {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, "", fmt.Errorf("path segment %q not found", seg)
			}
			cur = v
		case []any:
			idx, convErr := strconv.Atoi(seg)
			if convErr != nil || idx < 0 || idx >= len(c) {
				return nil, "", fmt.Errorf("invalid array index %q", seg)
			}
			cur = c[idx]
		default:
			return nil, "", fmt.Errorf("cannot descend into scalar at segment %q", seg)
		}
	}
	return cur, segments[len(segments)-1], nil
}
