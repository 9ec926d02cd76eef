// Package fieldpath parses and joins dotted/bracketed field paths such as
// "items[2].name" and navigates raw map/slice trees with them.
//
// A path is a sequence of segments. Named segments are joined with dots,
// integer segments are written in brackets:
//
//	fieldpath.Extract("items[2].name")         // ["items", "2", "name"]
//	fieldpath.Concat("items", "2")             // "items[2]"
//	fieldpath.Join([]string{"a", "-1", "b"})   // "a[-1].b"
//
// Negative indices count from the end of a sequence.
package fieldpath
