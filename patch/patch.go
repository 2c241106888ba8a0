package patch

import (
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Patch is an ordered list of Operations.
type Patch []Operation

// New creates a new empty Patch.
func New() Patch {
	return Patch{}
}

// Add appends an operation that adds value at path.
func (p Patch) Add(path string, value any) Patch {
	return append(p, Operation{Op: OperationTypeAdd, Path: path, Value: value})
}

// Remove appends an operation that removes the value at path.
func (p Patch) Remove(path string) Patch {
	return append(p, Operation{Op: OperationTypeRemove, Path: path})
}

// Replace appends an operation that replaces the value at path.
func (p Patch) Replace(path string, value any) Patch {
	return append(p, Operation{Op: OperationTypeReplace, Path: path, Value: value})
}

// Move appends an operation that moves the value at from to path.
func (p Patch) Move(from, path string) Patch {
	return append(p, Operation{Op: OperationTypeMove, Path: path, From: from})
}

// Copy appends an operation that copies the value at from to path.
func (p Patch) Copy(from, path string) Patch {
	return append(p, Operation{Op: OperationTypeCopy, Path: path, From: from})
}

// Test appends an operation that tests the value at path.
func (p Patch) Test(path string, value any) Patch {
	return append(p, Operation{Op: OperationTypeTest, Path: path, Value: value})
}

// Validate checks that every operation carries well formed JSON Pointers. It
// does not look at op types or values.
func (p Patch) Validate() error {
	for i, op := range p {
		if err := validatePointer(op.Path); err != nil {
			return fmt.Errorf("operation %d: path: %w", i, err)
		}
		if op.Op == OperationTypeMove || op.Op == OperationTypeCopy {
			if err := validatePointer(op.From); err != nil {
				return fmt.Errorf("operation %d: from: %w", i, err)
			}
		}
	}
	return nil
}

func validatePointer(pointer string) error {
	if pointer == "" {
		return nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return fmt.Errorf("%q does not start with '/'", pointer)
	}
	for i := 0; i < len(pointer); i++ {
		if pointer[i] != '~' {
			continue
		}
		if i+1 == len(pointer) || (pointer[i+1] != '0' && pointer[i+1] != '1') {
			return fmt.Errorf("%q has an invalid escape at offset %d", pointer, i)
		}
	}
	return nil
}

// Decode parses an RFC 6902 JSON document into a Patch. Values are decoded
// the way encoding/json decodes into an interface value.
func Decode(data []byte) (Patch, error) {
	decoded, err := jsonpatch.DecodePatch(data)
	if err != nil {
		return nil, fmt.Errorf("decoding JSON patch: %w", err)
	}

	p := make(Patch, 0, len(decoded))
	for i, raw := range decoded {
		op, err := fromJSONPatch(raw)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		p = append(p, op)
	}
	return p, nil
}

func fromJSONPatch(raw jsonpatch.Operation) (Operation, error) {
	op := Operation{Op: OperationType(raw.Kind())}

	path, err := raw.Path()
	if err != nil {
		return Operation{}, err
	}
	op.Path = path

	switch op.Op {
	case OperationTypeAdd, OperationTypeReplace, OperationTypeTest:
		// A JSON null value decodes to a nil entry, which the library
		// reports as missing.
		if v, ok := raw["value"]; ok && v == nil {
			break
		}
		if op.Value, err = raw.ValueInterface(); err != nil {
			return Operation{}, err
		}
	case OperationTypeMove, OperationTypeCopy:
		if op.From, err = raw.From(); err != nil {
			return Operation{}, err
		}
	}
	return op, nil
}
