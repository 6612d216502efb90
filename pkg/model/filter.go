package model

// FilterOp defines the supported filter operators.
type FilterOp string

const (
	OpEq  FilterOp = "==" // Equal
	OpNe  FilterOp = "!=" // Not equal
	OpGt  FilterOp = ">"  // Greater than
	OpGte FilterOp = ">=" // Greater than or equal
	OpLt  FilterOp = "<"  // Less than
	OpLte FilterOp = "<=" // Less than or equal
	OpIn  FilterOp = "in" // Value in array
)

// ValidOps returns all valid filter operators.
func ValidOps() []FilterOp {
	return []FilterOp{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn}
}

// IsValid checks if the operator is valid.
func (op FilterOp) IsValid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn:
		return true
	}
	return false
}

// Filters is a slice of Filter.
type Filters []Filter

// Filter represents a query filter
type Filter struct {
	Field string      `json:"field"`
	Op    FilterOp    `json:"op"`
	Value interface{} `json:"value"`
}

// Validate checks if the filter is valid.
func (f Filter) Validate() bool {
	if f.Field == "" {
		return false
	}
	return f.Op.IsValid()
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order represents a sort order
type Order struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"` // "asc" or "desc"
}

// Query represents a read over one collection.
//
// Filters on the same field are conjunctive, so two bounds on one field form a range.
// When OrderBy is empty the result order is whatever the backend yields.
type Query struct {
	Collection string  `json:"collection"`
	Filters    Filters `json:"filters"`
	OrderBy    []Order `json:"orderBy"`
	Limit      int     `json:"limit"`
}

// Validate checks the query shape before it reaches a backend.
func (q Query) Validate() bool {
	if q.Collection == "" || q.Limit < 0 {
		return false
	}
	for _, f := range q.Filters {
		if !f.Validate() {
			return false
		}
	}
	for _, o := range q.OrderBy {
		if o.Field == "" || (o.Direction != Asc && o.Direction != Desc) {
			return false
		}
	}
	return true
}
