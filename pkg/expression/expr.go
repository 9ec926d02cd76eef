package expression

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// ExprEvaluator evaluates expressions with github.com/expr-lang/expr.
type ExprEvaluator struct {
	opts options
}

// NewExpr constructs an expr-lang evaluator.
func NewExpr(opts ...Option) *ExprEvaluator {
	return &ExprEvaluator{opts: buildOptions(opts)}
}

// Evaluate compiles expression, or reuses its cached program, and runs it
// with env's keys as variables. Unknown variables evaluate to nil.
func (e *ExprEvaluator) Evaluate(expression string, env map[string]any) (any, error) {
	expression, err := e.opts.check(expression)
	if err != nil {
		return nil, err
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	if env == nil {
		env = map[string]any{}
	}
	result, err := exprlang.Run(program, env)
	if err != nil {
		return nil, evaluationError(expression, err)
	}
	return result, nil
}

func (e *ExprEvaluator) loadOrCompile(expression string) (*exprvm.Program, error) {
	key := "expr:" + expression
	if cached, ok := e.opts.cache.Get(key); ok {
		if program, ok := cached.(*exprvm.Program); ok {
			return program, nil
		}
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, evaluationError(expression, err)
	}
	e.opts.cache.Set(key, program)
	return program, nil
}
