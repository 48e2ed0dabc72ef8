// Package facts derives structural facts from Python source.
package facts

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrNoCGO is returned when extraction is unavailable due to missing CGO.
var ErrNoCGO = errors.New("structural extraction requires CGO (tree-sitter)")

// ParseError reports that a unit could not be parsed as valid source.
// Line and Column are 1-based and point at the first error node.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// CountLines returns the number of physical lines in src.
func CountLines(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := bytes.Count(src, []byte{'\n'})
	if src[len(src)-1] != '\n' {
		n++
	}
	return n
}
