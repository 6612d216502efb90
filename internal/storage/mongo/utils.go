package mongo

import (
	"github.com/syntrixbase/showroom/internal/storage/types"
	"github.com/syntrixbase/showroom/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// makeFilterBSON converts filters to a BSON filter. Filters on the same
// field are merged so that two bounds on one field form a range.
func makeFilterBSON(filters model.Filters) bson.M {
	bsonFilter := bson.M{}

	for _, f := range filters {
		fieldName := mapField(f.Field)
		op := mapOp(f.Op)
		if existing, ok := bsonFilter[fieldName].(bson.M); ok {
			existing[op] = f.Value
			continue
		}
		bsonFilter[fieldName] = bson.M{op: f.Value}
	}

	return bsonFilter
}

func mapField(field string) string {
	switch field {
	case types.FieldID, "_id":
		return "_id"
	case "collection":
		return "collection"
	case types.FieldCreated:
		return "created_at"
	case types.FieldUpdated:
		return "updated_at"
	default:
		return "data." + field
	}
}

func mapOp(op model.FilterOp) string {
	switch op {
	case model.OpEq:
		return "$eq"
	case model.OpNe:
		return "$ne"
	case model.OpGt:
		return "$gt"
	case model.OpGte:
		return "$gte"
	case model.OpLt:
		return "$lt"
	case model.OpLte:
		return "$lte"
	case model.OpIn:
		return "$in"
	default:
		return "$eq" // Default to equality
	}
}

func makeSortBSON(orders []model.Order) bson.D {
	sort := bson.D{}
	for _, o := range orders {
		dir := 1
		if o.Direction == model.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: mapField(o.Field), Value: dir})
	}
	return sort
}

// normalizeValue turns driver container types into plain Go maps and slices
// so callers never see primitive.A, primitive.D or primitive.M.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.A:
		return normalizeSlice(val)
	case []interface{}:
		return normalizeSlice(val)
	case primitive.D:
		out := make(map[string]interface{}, len(val))
		for _, e := range val {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case primitive.M:
		return normalizeMap(val)
	case map[string]interface{}:
		return normalizeMap(val)
	default:
		return v
	}
}

func normalizeSlice(in []interface{}) []interface{} {
	out := make([]interface{}, len(in))
	for i, e := range in {
		out[i] = normalizeValue(e)
	}
	return out
}

func normalizeMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, e := range in {
		out[k] = normalizeValue(e)
	}
	return out
}
