package laguz

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPath is returned by ParsePath for malformed bracket segments.
var ErrInvalidPath = errors.New("invalid path")

// JoinPath appends key to base using the canonical path encoding.
//
// Identifier-safe keys are joined with a dot; every other key is quoted and
// wrapped in brackets. An empty base yields the key alone.
//
//	JoinPath("", "user")          // user
//	JoinPath("user", "name")      // user.name
//	JoinPath("list", 0)           // list["0"]
//	JoinPath("tags", "two words") // tags["two words"]
func JoinPath(base string, key any) string {
	k := keyString(key)
	if base == "" {
		return k
	}
	if isIdentifier(k) {
		return base + "." + k
	}
	return base + "[" + strconv.Quote(k) + "]"
}

// IsParent reports whether parent is child itself or one of its dotted
// ancestors. The empty path is the parent of everything.
func IsParent(parent, child string) bool {
	return parent == "" || child == parent || strings.HasPrefix(child, parent+".")
}

// Related reports whether either path is a parent of the other.
func Related(a, b string) bool {
	return IsParent(a, b) || IsParent(b, a)
}

// ParsePath splits a path produced by JoinPath back into its keys.
//
// The first segment is taken verbatim up to the first separator, matching
// JoinPath's treatment of root keys.
func ParsePath(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	var keys []string
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			i++
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			if j == i {
				return nil, fmt.Errorf("%w: empty segment at offset %d in %q", ErrInvalidPath, i, path)
			}
			keys = append(keys, path[i:j])
			i = j
		case '[':
			end := closingBracket(path, i+1)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated bracket at offset %d in %q", ErrInvalidPath, i, path)
			}
			key, err := strconv.Unquote(path[i+1 : end])
			if err != nil {
				return nil, fmt.Errorf("%w: %s in %q", ErrInvalidPath, err, path)
			}
			keys = append(keys, key)
			i = end + 1
		default:
			if i != 0 {
				return nil, fmt.Errorf("%w: unexpected %q at offset %d in %q", ErrInvalidPath, path[i], i, path)
			}
			j := 0
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			keys = append(keys, path[:j])
			i = j
		}
	}
	return keys, nil
}

// closingBracket finds the ']' that ends a quoted key starting at from.
func closingBracket(path string, from int) int {
	if from >= len(path) || path[from] != '"' {
		return -1
	}
	escaped := false
	for i := from + 1; i < len(path); i++ {
		switch {
		case escaped:
			escaped = false
		case path[i] == '\\':
			escaped = true
		case path[i] == '"':
			if i+1 < len(path) && path[i+1] == ']' {
				return i + 1
			}
			return -1
		}
	}
	return -1
}

func keyString(key any) string {
	switch k := key.(type) {
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	default:
		return fmt.Sprint(key)
	}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || c == '$':
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
