package notebook

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrDisposed = errors.New("notebook document is disposed")

// InvalidIndexError reports a cell index outside of the document.
type InvalidIndexError struct {
	Index  int
	Length int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("model index out of range %d (length %d)", e.Index, e.Length)
}

// InvalidEditError reports a malformed edit or a cell reference
// that cannot be resolved.
type InvalidEditError struct {
	EditType EditType
	Reason   string
}

func (e *InvalidEditError) Error() string {
	return fmt.Sprintf("invalid cell edit (%s): %s", e.EditType, e.Reason)
}

// TooLargeError is returned when a backup snapshot exceeds its output budget.
type TooLargeError struct {
	Size  int
	Limit int
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("notebook too large to backup: outputs take %d bytes, limit is %d", e.Size, e.Limit)
}
