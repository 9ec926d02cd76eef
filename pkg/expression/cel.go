package expression

import (
	"sort"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluator evaluates expressions with github.com/google/cel-go. Every
// top-level key of the environment is declared as a dynamic variable.
type CELEvaluator struct {
	opts options
}

// NewCEL constructs a CEL evaluator.
func NewCEL(opts ...Option) *CELEvaluator {
	return &CELEvaluator{opts: buildOptions(opts)}
}

// Evaluate compiles expression for the shape of env, or reuses a cached
// program, and evaluates it.
func (e *CELEvaluator) Evaluate(expression string, env map[string]any) (any, error) {
	expression, err := e.opts.check(expression)
	if err != nil {
		return nil, err
	}
	if env == nil {
		env = map[string]any{}
	}
	program, err := e.loadOrCompile(expression, env)
	if err != nil {
		return nil, err
	}
	out, _, err := program.Eval(env)
	if err != nil {
		return nil, evaluationError(expression, err)
	}
	return nativeValue(out), nil
}

func (e *CELEvaluator) loadOrCompile(expression string, env map[string]any) (celgo.Program, error) {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	key := "cel:" + strings.Join(names, ",") + ":" + expression
	if cached, ok := e.opts.cache.Get(key); ok {
		if program, ok := cached.(celgo.Program); ok {
			return program, nil
		}
	}

	vars := make([]celgo.EnvOption, 0, len(names))
	for _, name := range names {
		vars = append(vars, celgo.Variable(name, celgo.DynType))
	}
	celEnv, err := celgo.NewEnv(vars...)
	if err != nil {
		return nil, evaluationError(expression, err)
	}
	ast, issues := celEnv.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, evaluationError(expression, issues.Err())
	}
	program, err := celEnv.Program(ast)
	if err != nil {
		return nil, evaluationError(expression, err)
	}
	e.opts.cache.Set(key, program)
	return program, nil
}

// nativeValue converts CEL results into plain Go values.
func nativeValue(v ref.Val) any {
	switch x := v.Value().(type) {
	case int64:
		return int(x)
	case uint64:
		return int(x)
	default:
		return x
	}
}
