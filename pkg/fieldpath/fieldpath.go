package fieldpath

import (
	"strconv"
	"strings"
)

// Extract splits a field path into its segments.
// Bracketed integers become their own segments and empty segments are dropped.
func Extract(path string) []string {
	if path == "" {
		return nil
	}

	var b strings.Builder
	b.Grow(len(path))

	for i := 0; i < len(path); i++ {
		c := path[i]
		if c != '[' {
			b.WriteByte(c)
			continue
		}
		end := strings.IndexByte(path[i:], ']')
		if end < 0 || !IsIndex(path[i+1:i+end]) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('.')
		b.WriteString(path[i+1 : i+end])
		i += end
	}

	parts := strings.Split(b.String(), ".")
	segments := parts[:0]
	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// Concat appends one segment to path.
func Concat(path, part string) string {
	if IsIndex(part) {
		return path + "[" + part + "]"
	}
	if path == "" {
		return part
	}
	return path + "." + part
}

// Join builds a path from segments.
func Join(segments []string) string {
	path := ""
	for _, segment := range segments {
		path = Concat(path, segment)
	}
	return path
}

// Parent returns the path without its last segment and that segment.
func Parent(path string) (string, string) {
	segments := Extract(path)
	if len(segments) == 0 {
		return "", ""
	}
	return Join(segments[:len(segments)-1]), segments[len(segments)-1]
}

// IsIndex reports whether s is an optionally negative decimal integer.
func IsIndex(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Index resolves segment against a sequence of length n.
// Negative indices count from the end.
func Index(segment string, n int) (int, bool) {
	if !IsIndex(segment) {
		return 0, false
	}
	i, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, false
	}
	return i, true
}

// Get reads the value at path inside a raw tree of map[string]any and []any.
// Navigation stops at the first value that is not a container and that value
// is returned, mirroring a tolerant property lookup.
func Get(src any, path string) any {
	current := src
	for _, segment := range Extract(path) {
		switch c := current.(type) {
		case map[string]any:
			current = c[segment]
		case []any:
			i, ok := Index(segment, len(c))
			if !ok {
				return nil
			}
			current = c[i]
		default:
			return current
		}
	}
	return current
}

// Set writes value at path inside a raw tree. It returns false, leaving the
// tree untouched, when the parent of the last segment is not a container or
// the index is out of range.
func Set(src any, path string, value any) bool {
	segments := Extract(path)
	if len(segments) == 0 {
		return false
	}

	parent := src
	for _, segment := range segments[:len(segments)-1] {
		switch c := parent.(type) {
		case map[string]any:
			parent = c[segment]
		case []any:
			i, ok := Index(segment, len(c))
			if !ok {
				return false
			}
			parent = c[i]
		default:
			return false
		}
	}

	last := segments[len(segments)-1]
	switch c := parent.(type) {
	case map[string]any:
		c[last] = value
		return true
	case []any:
		i, ok := Index(last, len(c))
		if !ok {
			return false
		}
		c[i] = value
		return true
	default:
		return false
	}
}
