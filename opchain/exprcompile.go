package opchain

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// CompiledExpr is one expression rendered to expr-lang source and
// compiled to a *vm.Program, generalising the teacher's
// condition.ExprCondition wrapper from a boolean-only predicate to any
// value-returning expression.
type CompiledExpr struct {
	Source  string
	Program *vm.Program
}

// compileOptions mirrors condition.NewExprCondition's option set:
// is_null/is_not_null/like_match as callable functions, undefined
// variables allowed so a compiled program can be exercised against
// partial environments in tests, and AsBool only for predicates.
func compileOptions(asBool bool) []expr.Option {
	opts := []expr.Option{
		expr.Function("like_match", func(params ...any) (any, error) {
			if len(params) != 2 {
				return false, fmt.Errorf("like_match function requires 2 parameters")
			}
			text, ok1 := params[0].(string)
			pattern, ok2 := params[1].(string)
			if !ok1 || !ok2 {
				return false, fmt.Errorf("like_match function requires string parameters")
			}
			return likeMatch(text, pattern), nil
		}),
		expr.Function("is_null", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, fmt.Errorf("is_null function requires 1 parameter")
			}
			return params[0] == nil, nil
		}),
		expr.Function("is_not_null", func(params ...any) (any, error) {
			if len(params) != 1 {
				return false, fmt.Errorf("is_not_null function requires 1 parameter")
			}
			return params[0] != nil, nil
		}),
		expr.AllowUndefinedVariables(),
	}
	if asBool {
		opts = append(opts, expr.AsBool())
	}
	return opts
}

// CompileValue compiles src as a value-returning expression (a Map or
// Fold field).
func CompileValue(src string) (*CompiledExpr, error) {
	program, err := expr.Compile(src, compileOptions(false)...)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", src, err)
	}
	return &CompiledExpr{Source: src, Program: program}, nil
}

// CompilePredicate compiles src as a boolean-returning expression (a
// Filter's predicate).
func CompilePredicate(src string) (*CompiledExpr, error) {
	program, err := expr.Compile(src, compileOptions(true)...)
	if err != nil {
		return nil, fmt.Errorf("compile predicate %q: %w", src, err)
	}
	return &CompiledExpr{Source: src, Program: program}, nil
}

// likeMatch implements SQL LIKE pattern matching: % matches any run of
// characters, _ matches exactly one.
func likeMatch(text, pattern string) bool {
	return likeMatchAt(text, pattern, 0, 0)
}

func likeMatchAt(text, pattern string, ti, pi int) bool {
	if pi >= len(pattern) {
		return ti >= len(text)
	}
	if ti >= len(text) {
		for i := pi; i < len(pattern); i++ {
			if pattern[i] != '%' {
				return false
			}
		}
		return true
	}
	switch pattern[pi] {
	case '%':
		if likeMatchAt(text, pattern, ti, pi+1) {
			return true
		}
		for i := ti; i < len(text); i++ {
			if likeMatchAt(text, pattern, i+1, pi+1) {
				return true
			}
		}
		return false
	case '_':
		return likeMatchAt(text, pattern, ti+1, pi+1)
	default:
		if text[ti] == pattern[pi] {
			return likeMatchAt(text, pattern, ti+1, pi+1)
		}
		return false
	}
}
