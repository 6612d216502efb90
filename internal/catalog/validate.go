package catalog

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/syntrixbase/showroom/pkg/model"
)

// RecordChecker evaluates a CEL rule against raw vehicle documents.
type RecordChecker struct {
	rule string
	prg  cel.Program
}

// NewRecordChecker compiles rule. The document is bound to the variable `doc`.
func NewRecordChecker(rule string) (*RecordChecker, error) {
	env, err := cel.NewEnv(
		cel.Variable("doc", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid record rule: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("invalid record rule: %w", err)
	}
	return &RecordChecker{rule: rule, prg: prg}, nil
}

// Check returns an error wrapping model.ErrMalformedRecord when data does not satisfy the rule.
func (c *RecordChecker) Check(data map[string]interface{}) error {
	if data == nil {
		data = map[string]interface{}{}
	}
	out, _, err := c.prg.Eval(map[string]interface{}{"doc": data})
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedRecord, err)
	}
	if ok, _ := out.Value().(bool); !ok {
		return fmt.Errorf("%w: rule %q not satisfied", model.ErrMalformedRecord, c.rule)
	}
	return nil
}
