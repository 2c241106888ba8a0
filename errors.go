package mongopatch

import (
	"errors"
	"fmt"

	"github.com/kenuyx/jsonpatch-to-mongodb/patch"
)

var (
	// ErrUnsupportedValue is returned when the input is neither a JSON Patch
	// (an array of operations) nor a JSON Merge Patch (an object).
	ErrUnsupportedValue = errors.New("unsupported value: an array or an object only")

	// ErrUnsupportedOperation is wrapped by UnsupportedOperationError.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrInvalidArrayMerge is wrapped by ArrayMergeError.
	ErrInvalidArrayMerge = errors.New("invalid array merge")

	// ErrRemovedPathReuse is wrapped by RemovedPathError.
	ErrRemovedPathReuse = errors.New("removed path reused")

	// ErrInvalidOperation is returned when a decoded operation record does
	// not have the shape of an RFC 6902 operation.
	ErrInvalidOperation = errors.New("invalid operation")
)

// UnsupportedOperationError reports an operation whose type has no MongoDB
// update equivalent, such as copy or test.
type UnsupportedOperationError struct {
	Index int
	Op    patch.OperationType
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("operation %d: unsupported operation! op = %s", e.Index, e.Op)
}

func (e *UnsupportedOperationError) Unwrap() error { return ErrUnsupportedOperation }

// ArrayMergeError reports an array add that cannot be merged into the open
// $push on the same location. It is only returned in strict array merge mode.
type ArrayMergeError struct {
	Index    int
	Location string
	Position string
}

func (e *ArrayMergeError) Error() string {
	return fmt.Sprintf("operation %d: add at position %s cannot be merged into the $push on %q",
		e.Index, e.Position, e.Location)
}

func (e *ArrayMergeError) Unwrap() error { return ErrInvalidArrayMerge }

// RemovedPathError reports an operation on a path that an earlier operation
// of the same patch removed or moved away. It is only returned in strict path
// reuse mode.
type RemovedPathError struct {
	Index   int
	Path    string
	Removed string
}

func (e *RemovedPathError) Error() string {
	return fmt.Sprintf("operation %d: %q is under %q which was removed earlier in the patch",
		e.Index, e.Path, e.Removed)
}

func (e *RemovedPathError) Unwrap() error { return ErrRemovedPathReuse }
