package memory

import (
	"errors"
	"reflect"
	"strings"

	"github.com/syntrixbase/showroom/internal/storage/types"
	"github.com/syntrixbase/showroom/pkg/model"
)

var errClosed = errors.New("memory store closed")

// fieldValue resolves a query field against a document; dotted names walk nested maps.
func fieldValue(doc *types.StoredDoc, field string) interface{} {
	switch field {
	case types.FieldID, "_id":
		return doc.Id
	case "collection":
		return doc.Collection
	case types.FieldCreated:
		return doc.CreatedAt
	case types.FieldUpdated:
		return doc.UpdatedAt
	}

	var cur interface{} = doc.Data
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

func matchAll(doc *types.StoredDoc, filters model.Filters) bool {
	for _, f := range filters {
		if !match(fieldValue(doc, f.Field), f) {
			return false
		}
	}
	return true
}

func match(v interface{}, f model.Filter) bool {
	if f.Op == model.OpIn {
		rv := reflect.ValueOf(f.Value)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if c, ok := compare(v, rv.Index(i).Interface()); ok && c == 0 {
				return true
			}
		}
		return false
	}

	c, ok := compare(v, f.Value)
	if !ok {
		// Mismatched types only satisfy "not equal".
		return f.Op == model.OpNe
	}
	switch f.Op {
	case model.OpNe:
		return c != 0
	case model.OpGt:
		return c > 0
	case model.OpGte:
		return c >= 0
	case model.OpLt:
		return c < 0
	case model.OpLte:
		return c <= 0
	default:
		return c == 0
	}
}

// compare orders two values of the same kind. Strings compare byte-wise,
// numbers numerically. ok is false when the values are not comparable.
func compare(a, b interface{}) (int, bool) {
	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		if !bok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	}
	return 0, true
}

// compareValues is a total order used for sorting: nil sorts first,
// then numbers, then strings, then everything else.
func compareValues(a, b interface{}) int {
	if c, ok := compare(a, b); ok {
		return c
	}
	return rank(a) - rank(b)
}

func rank(v interface{}) int {
	if v == nil {
		return 0
	}
	if _, ok := toFloat(v); ok {
		return 1
	}
	if _, ok := v.(string); ok {
		return 2
	}
	return 3
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
