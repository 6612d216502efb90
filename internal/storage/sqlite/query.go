package sqlite

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/syntrixbase/showroom/internal/storage/types"
	"github.com/syntrixbase/showroom/pkg/model"
)

var fieldRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

const selectColumns = "SELECT id, collection, created_at, updated_at, data FROM documents"

// buildSelect translates a query into a parameterized SELECT.
func buildSelect(q model.Query) (string, []interface{}, error) {
	if !q.Validate() {
		return "", nil, fmt.Errorf("%w: %+v", model.ErrInvalidQuery, q)
	}

	var (
		sb   strings.Builder
		args []interface{}
	)
	sb.WriteString(selectColumns)
	sb.WriteString(" WHERE collection = ?")
	args = append(args, q.Collection)

	for _, f := range q.Filters {
		expr, err := columnExpr(f.Field)
		if err != nil {
			return "", nil, err
		}

		if f.Op == model.OpIn {
			values, err := toSlice(f.Value)
			if err != nil {
				return "", nil, err
			}
			if len(values) == 0 {
				sb.WriteString(" AND 0")
				continue
			}
			sb.WriteString(" AND " + expr + " IN (" + strings.TrimSuffix(strings.Repeat("?,", len(values)), ",") + ")")
			args = append(args, values...)
			continue
		}

		sb.WriteString(" AND " + expr + " " + mapOp(f.Op) + " ?")
		args = append(args, f.Value)
	}

	if len(q.OrderBy) > 0 {
		parts := make([]string, 0, len(q.OrderBy))
		for _, o := range q.OrderBy {
			expr, err := columnExpr(o.Field)
			if err != nil {
				return "", nil, err
			}
			dir := "ASC"
			if o.Direction == model.Desc {
				dir = "DESC"
			}
			parts = append(parts, expr+" "+dir)
		}
		sb.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	return sb.String(), args, nil
}

// columnExpr maps a field to its column. Data fields become json_extract with a
// literal path, which is what lets SQLite match expression indexes such as
// idx_documents_name. fieldRegex keeps quotes out of the path.
func columnExpr(field string) (string, error) {
	switch field {
	case types.FieldID, "_id":
		return "id", nil
	case "collection":
		return "collection", nil
	case types.FieldCreated:
		return "created_at", nil
	case types.FieldUpdated:
		return "updated_at", nil
	}
	if !fieldRegex.MatchString(field) {
		return "", fmt.Errorf("%w: field %q", model.ErrInvalidQuery, field)
	}
	return "json_extract(data, '$." + field + "')", nil
}

func mapOp(op model.FilterOp) string {
	switch op {
	case model.OpNe:
		return "!="
	case model.OpGt:
		return ">"
	case model.OpGte:
		return ">="
	case model.OpLt:
		return "<"
	case model.OpLte:
		return "<="
	default:
		return "="
	}
}

func toSlice(v interface{}) ([]interface{}, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: 'in' expects a list, got %T", model.ErrInvalidQuery, v)
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
