package mongopatch

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// MongoDB update operators emitted in stages.
const (
	OpSet    = "$set"
	OpUnset  = "$unset"
	OpPush   = "$push"
	OpPop    = "$pop"
	OpPull   = "$pull"
	OpRename = "$rename"
	OpInc    = "$inc"
	OpMul    = "$mul"
)

// operatorOrder is the order operators are rendered in by Stage.Document.
var operatorOrder = []string{OpRename, OpSet, OpUnset, OpInc, OpMul, OpPush, OpPop, OpPull}

// Fields maps a dot-notation field path to an operator operand.
type Fields map[string]any

// Stage is one MongoDB update document, mapping an update operator to the
// fields it applies to. Stages of a sequence must be applied in order.
type Stage map[string]Fields

// PushModifier is the operand of a $push that inserts several values at once.
type PushModifier struct {
	Each     []any `json:"$each" yaml:"$each" bson:"$each"`
	Position *int  `json:"$position,omitempty" yaml:"$position,omitempty" bson:"$position,omitempty"`
}

func (s Stage) set(op, field string, value any) {
	fields, ok := s[op]
	if !ok {
		fields = Fields{}
		s[op] = fields
	}
	fields[field] = value
}

// Document renders the stage as an ordered BSON document. Operators follow a
// fixed order and fields are sorted, so equal stages render identically.
func (s Stage) Document() bson.D {
	doc := bson.D{}
	for _, op := range operatorOrder {
		fields, ok := s[op]
		if !ok {
			continue
		}
		doc = append(doc, bson.E{Key: op, Value: fields.Document()})
	}
	return doc
}

// MarshalBSON implements bson.Marshaler.
func (s Stage) MarshalBSON() ([]byte, error) {
	return bson.Marshal(s.Document())
}

// Document renders the fields as a BSON document sorted by field path.
func (f Fields) Document() bson.D {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	doc := make(bson.D, 0, len(keys))
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: f[k]})
	}
	return doc
}
