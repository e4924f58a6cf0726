package mongostore

import (
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fieldAccumulator builds the flat schema across sampled documents.
// The first observed type for a path wins; the count tallies every
// document the path occurred in.
type fieldAccumulator struct {
	byPath map[string]*Field
}

func newFieldAccumulator() *fieldAccumulator {
	return &fieldAccumulator{byPath: make(map[string]*Field)}
}

func (a *fieldAccumulator) addDocument(doc bson.D) {
	a.walk("", doc)
}

// walk records every key/value pair under its dot-joined path and
// descends into nested documents. Arrays are reported as "array"
// without per-element descent.
func (a *fieldAccumulator) walk(prefix string, doc bson.D) {
	for _, elem := range doc {
		path := elem.Key
		if prefix != "" {
			path = prefix + "." + elem.Key
		}
		a.record(path, typeLabel(elem.Value))

		if nested, ok := asDocument(elem.Value); ok {
			a.walk(path, nested)
		}
	}
}

func (a *fieldAccumulator) record(path, label string) {
	if field, ok := a.byPath[path]; ok {
		field.Count++
		return
	}
	a.byPath[path] = &Field{Name: path, Type: label, Count: 1}
}

// fields returns the accumulated fields sorted by path.
func (a *fieldAccumulator) fields() []Field {
	out := make([]Field, 0, len(a.byPath))
	for _, field := range a.byPath {
		out = append(out, *field)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// typeLabel maps a decoded BSON value to its schema label. Null and
// ObjectId are distinct labels, never folded into "object".
func typeLabel(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case primitive.ObjectID:
		return "ObjectId"
	case primitive.A, []any:
		return "array"
	case bson.D, bson.M, map[string]any:
		return "object"
	case primitive.DateTime, time.Time:
		return "date"
	case string:
		return "string"
	case bool:
		return "bool"
	case int32, int:
		return "int"
	case int64:
		return "long"
	case float64:
		return "double"
	case primitive.Decimal128:
		return "decimal"
	case primitive.Binary:
		return "binData"
	case primitive.Timestamp:
		return "timestamp"
	case primitive.Regex:
		return "regex"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func asDocument(v any) (bson.D, bool) {
	switch doc := v.(type) {
	case bson.D:
		return doc, true
	case bson.M:
		// Map order is unstable, so sort for deterministic walks.
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make(bson.D, 0, len(doc))
		for _, k := range keys {
			ordered = append(ordered, bson.E{Key: k, Value: doc[k]})
		}
		return ordered, true
	default:
		return nil, false
	}
}
