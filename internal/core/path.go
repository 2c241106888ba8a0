package core

import (
	"strconv"
	"strings"
)

// IndexKind tells how the last segment of a dot path was interpreted.
type IndexKind int

const (
	// Field means the last segment is a field name, not an array index.
	Field IndexKind = iota
	// Append is the "-" segment, the position past the end of an array.
	Append
	// Position is a signed integer array position.
	Position
)

// Index is the parsed last segment of a dot path.
type Index struct {
	Kind IndexKind
	N    int
}

// IsField reports whether the index is a field name.
func (i Index) IsField() bool { return i.Kind == Field }

// IsAppend reports whether the index is the "-" segment.
func (i Index) IsAppend() bool { return i.Kind == Append }

// IsPosition reports whether the index is an integer position.
func (i Index) IsPosition() bool { return i.Kind == Position }

func (i Index) String() string {
	switch i.Kind {
	case Append:
		return "-"
	case Position:
		return strconv.Itoa(i.N)
	default:
		return "NaN"
	}
}

// DotPath is a MongoDB dot-notation path split into the container it
// addresses and the trailing index.
type DotPath struct {
	// Full is the whole dot-notation path.
	Full string
	// Location is the container path. When Index is a Field, Location is
	// the same as Full.
	Location string
	Index    Index
}

// ToDotPath converts a JSON Pointer into MongoDB dot notation. Escapes are
// decoded after the delimiters are replaced, so "~1" becomes a literal "/"
// inside a segment.
func ToDotPath(pointer string) string {
	p := strings.TrimPrefix(pointer, "/")
	p = strings.ReplaceAll(p, "/", ".")
	p = strings.ReplaceAll(p, "~1", "/")
	p = strings.ReplaceAll(p, "~0", "~")
	return p
}

// Extract splits a dot path into its location and trailing index.
func Extract(dotPath string) DotPath {
	location, last := "", dotPath
	if i := strings.LastIndexByte(dotPath, '.'); i >= 0 {
		location, last = dotPath[:i], dotPath[i+1:]
	}

	if last == "-" {
		return DotPath{Full: dotPath, Location: location, Index: Index{Kind: Append}}
	}
	if n, err := strconv.Atoi(last); err == nil {
		return DotPath{Full: dotPath, Location: location, Index: Index{Kind: Position, N: n}}
	}
	return DotPath{Full: dotPath, Location: dotPath, Index: Index{Kind: Field}}
}

// ParsePointer is ToDotPath followed by Extract.
func ParsePointer(pointer string) DotPath {
	return Extract(ToDotPath(pointer))
}

// Under reports whether path is root itself or one of its dotted
// descendants.
func Under(path, root string) bool {
	if path == root {
		return true
	}
	if root == "" {
		return false
	}
	return strings.HasPrefix(path, root) && path[len(root)] == '.'
}

// Related reports whether two locations are on the same branch, that is one
// of them is the other or an ancestor of it. The root location relates to
// nothing.
func Related(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return Under(a, b) || Under(b, a)
}
