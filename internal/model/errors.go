package model

import "fmt"

// ParseError reports bingo data that is not a flat name -> boolean object,
// or a grid size that cannot hold any cell.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "parse bingo data: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// NotFoundError reports a cell with no backing item.
type NotFoundError struct {
	Row, Col int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not get bingo item at row %d and col %d", e.Row, e.Col)
}
