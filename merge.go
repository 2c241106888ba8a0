package mongopatch

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// BSONTypeKey marks a decoded object as an opaque BSON value, such as an
// Extended JSON number. Objects carrying it are written whole, never walked.
const BSONTypeKey = "_bsontype"

// FromMergePatch translates an RFC 7396 JSON Merge Patch into a single stage.
// Null members become $unset and every other leaf becomes $set on its dotted
// path. Arrays and BSON values are leaves.
func FromMergePatch(doc any, opts ...Option) ([]Stage, error) {
	if _, ok := members(doc); !ok {
		return nil, ErrUnsupportedValue
	}
	return fromMergePatch(doc, newConfig(opts))
}

func fromMergePatch(doc any, cfg *config) ([]Stage, error) {
	set, unset := Fields{}, Fields{}
	if err := flatten(doc, "", set, unset, cfg); err != nil {
		return nil, err
	}

	stage := Stage{}
	if len(set) > 0 {
		stage[OpSet] = set
	}
	if len(unset) > 0 {
		stage[OpUnset] = unset
	}
	return []Stage{stage}, nil
}

func flatten(value any, path string, set, unset Fields, cfg *config) error {
	if value == nil {
		if path != "" {
			unset[path] = 1
		}
		return nil
	}

	if m, ok := members(value); ok {
		for _, e := range m {
			if err := flatten(e.Value, join(path, e.Key), set, unset, cfg); err != nil {
				return err
			}
		}
		return nil
	}

	if path == "" {
		return nil
	}
	if cfg.copier != nil {
		v, err := cfg.copier(value)
		if err != nil {
			return fmt.Errorf("member %q: copying value: %w", path, err)
		}
		value = v
	}
	set[path] = value
	return nil
}

// members returns the members of a plain object. Opaque BSON objects and
// everything that is not an object report false.
func members(value any) (bson.D, bool) {
	switch v := value.(type) {
	case map[string]any:
		return fromMap(v)
	case bson.M:
		return fromMap(v)
	case bson.D:
		for _, e := range v {
			if e.Key == BSONTypeKey {
				return nil, false
			}
		}
		return v, true
	}
	return nil, false
}

func fromMap(m map[string]any) (bson.D, bool) {
	if _, ok := m[BSONTypeKey]; ok {
		return nil, false
	}
	d := make(bson.D, 0, len(m))
	for k, v := range m {
		d = append(d, bson.E{Key: k, Value: v})
	}
	return d, true
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
