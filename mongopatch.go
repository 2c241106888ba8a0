// Package mongopatch translates RFC 6902 JSON Patches and RFC 7396 JSON Merge
// Patches into MongoDB update documents.
//
// A JSON Patch becomes an ordered list of stages. Applying the stages one
// after the other, for instance with repeated UpdateOne calls, has the same
// effect on a stored document as applying the patch to it in memory:
//
//	stages, err := mongopatch.FromJSONPatch(patch.New().
//		Add("/friends/-", "dave").
//		Add("/friends/-", "bob"))
//	// [{"$push": {"friends": {"$each": ["dave", "bob"]}}}]
//
// Consecutive adds on the same array are folded into one $push with $each and
// $position whenever their positions are contiguous. A new stage is opened
// only when an operation could observe the effect of an earlier one.
//
// Nothing in this package talks to a database.
package mongopatch

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/kenuyx/jsonpatch-to-mongodb/patch"
)

// ToUpdate translates a decoded patch. Arrays of operations ([]patch.Operation,
// patch.Patch or a decoded []any of operation objects) are JSON Patches;
// objects (map[string]any, bson.M, bson.D) are JSON Merge Patches. Any other
// input fails with ErrUnsupportedValue.
func ToUpdate(input any, opts ...Option) ([]Stage, error) {
	switch v := input.(type) {
	case patch.Patch:
		return FromJSONPatch(v, opts...)
	case []patch.Operation:
		return FromJSONPatch(v, opts...)
	case []any:
		ops, err := operations(v)
		if err != nil {
			return nil, err
		}
		return FromJSONPatch(ops, opts...)
	case []map[string]any:
		list := make([]any, len(v))
		for i := range v {
			list[i] = v[i]
		}
		ops, err := operations(list)
		if err != nil {
			return nil, err
		}
		return FromJSONPatch(ops, opts...)
	case map[string]any, bson.M, bson.D:
		return FromMergePatch(v, opts...)
	}
	return nil, ErrUnsupportedValue
}

// FromJSONPatch translates a JSON Patch into an ordered list of stages. An
// empty patch yields a single empty stage. On error no stages are returned.
func FromJSONPatch(ops []patch.Operation, opts ...Option) ([]Stage, error) {
	return newCompiler(newConfig(opts)).compile(ops)
}

// FromJSON decodes data and translates it. A JSON array is read as a JSON
// Patch and a JSON object as a JSON Merge Patch. A JSON Patch with a malformed
// pointer fails with ErrInvalidOperation.
func FromJSON(data []byte, opts ...Option) ([]Stage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrUnsupportedValue
	}

	switch trimmed[0] {
	case '[':
		ops, err := patch.Decode(trimmed)
		if err != nil {
			return nil, err
		}
		if err := ops.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOperation, err)
		}
		return FromJSONPatch(ops, opts...)
	case '{':
		var doc map[string]any
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decoding JSON merge patch: %w", err)
		}
		return FromMergePatch(doc, opts...)
	}
	return nil, ErrUnsupportedValue
}

// operations converts decoded operation objects into patch operations and
// checks their pointers.
func operations(list []any) ([]patch.Operation, error) {
	ops := make([]patch.Operation, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("operation %d: %w: not an object", i, ErrInvalidOperation)
		}

		var op patch.Operation
		kind, ok := m["op"].(string)
		if !ok {
			return nil, fmt.Errorf("operation %d: %w: op is not a string", i, ErrInvalidOperation)
		}
		op.Op = patch.OperationType(kind)
		if op.Path, ok = m["path"].(string); !ok {
			return nil, fmt.Errorf("operation %d: %w: path is not a string", i, ErrInvalidOperation)
		}
		if from, present := m["from"]; present {
			if op.From, ok = from.(string); !ok {
				return nil, fmt.Errorf("operation %d: %w: from is not a string", i, ErrInvalidOperation)
			}
		}
		op.Value = m["value"]
		ops = append(ops, op)
	}
	if err := patch.Patch(ops).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOperation, err)
	}
	return ops, nil
}
