package evaluator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/custodia-labs/harvester/internal/core/domain"
	"github.com/custodia-labs/harvester/internal/core/ports/driven"
)

// Ensure Evaluator implements the interface.
var _ driven.FieldEvaluator = (*Evaluator)(nil)

// DefaultVariable is the name the harvested record is bound to.
const DefaultVariable = "item"

// Evaluator compiles and runs CEL expressions. It is safe for concurrent use.
type Evaluator struct {
	env      *cel.Env
	programs sync.Map // expression -> cel.Program
}

// New creates an evaluator declaring each variable as map(string, dyn).
// With no names, only DefaultVariable is declared.
func New(variables ...string) (*Evaluator, error) {
	if len(variables) == 0 {
		variables = []string{DefaultVariable}
	}
	opts := make([]cel.EnvOption, 0, len(variables))
	for _, name := range variables {
		opts = append(opts, cel.Variable(name, cel.MapType(cel.StringType, cel.DynType)))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Evaluate runs expression against vars and returns a plain Go value
// (string, int64, float64, bool, []any, map[string]any or nil).
func (e *Evaluator) Evaluate(expression string, vars map[string]any) (any, error) {
	prg, err := e.program(expression)
	if err != nil {
		return nil, &domain.EvaluationError{Expression: expression, Err: err}
	}

	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, &domain.EvaluationError{Expression: expression, Err: err}
	}
	if types.IsError(out) {
		return nil, &domain.EvaluationError{Expression: expression, Err: fmt.Errorf("%v", out)}
	}
	return native(out), nil
}

func (e *Evaluator) program(expression string) (cel.Program, error) {
	if cached, ok := e.programs.Load(expression); ok {
		return cached.(cel.Program), nil
	}

	ast, iss := e.env.Compile(expression)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	if ast == nil {
		return nil, errors.New("empty expression")
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, err
	}

	actual, _ := e.programs.LoadOrStore(expression, prg)
	return actual.(cel.Program), nil
}

// native unwraps CEL values, converting lists and maps recursively.
func native(v ref.Val) any {
	switch {
	case v == nil || v.Type() == types.NullType:
		return nil
	case v.Type() == types.ListType:
		if l, ok := v.(traits.Lister); ok {
			out := []any{}
			for it := l.Iterator(); it.HasNext() == types.True; {
				out = append(out, native(it.Next()))
			}
			return out
		}
	case v.Type() == types.MapType:
		if m, ok := v.(traits.Mapper); ok {
			out := map[string]any{}
			for it := m.Iterator(); it.HasNext() == types.True; {
				k := it.Next()
				out[fmt.Sprint(k.Value())] = native(m.Get(k))
			}
			return out
		}
	}
	return v.Value()
}
