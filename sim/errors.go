package sim

import (
	"errors"
	"fmt"
)

// ErrInvalidIndex is returned when a node address lies outside the universe
// of a graph or allocation space. Match it with errors.Is.
var ErrInvalidIndex = errors.New("invalid index")

// IndexError reports the offending address and the universe size.
type IndexError struct {
	Index int
	Size  int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%v: node %d outside [0, %d)", ErrInvalidIndex, e.Index, e.Size)
}

// Unwrap lets errors.Is(err, ErrInvalidIndex) match.
func (e *IndexError) Unwrap() error { return ErrInvalidIndex }

// CheckIndex returns an *IndexError when index is not in [0, size).
func CheckIndex(index, size int) error {
	if index < 0 || index >= size {
		return &IndexError{Index: index, Size: size}
	}
	return nil
}
