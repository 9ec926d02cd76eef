// Package expression evaluates the restricted expressions behind a scope's
// compute capability.
//
// Expressions are never host-language source. They are compiled by one of
// two sandboxed engines, github.com/expr-lang/expr (the default) or
// github.com/google/cel-go, and evaluated against a plain snapshot of the
// scope's state. Compiled programs are cached per evaluator.
//
// An evaluator may carry an allow-list. When it is non-empty only the listed
// expressions are accepted and everything else fails with E020 before it is
// compiled.
package expression
