package codegen

import (
	"github.com/relstream/compiler/opchain"
	"github.com/relstream/compiler/plan"
	"github.com/relstream/compiler/semantics"
)

// newColumnEnv returns an opchain.ColumnEnv backed by ctx's resolver.
// opchain.ColumnEnv has no error return, so a resolution failure is
// captured through errOut instead; the caller must check *errOut once
// rendering finishes and before compiling the rendered source.
func newColumnEnv(ctx *semantics.Context) (env opchain.ColumnEnv, errOut *error) {
	var first error
	env = func(ref plan.ColumnRef) string {
		key, err := ctx.EnvKeyFor(ref)
		if err != nil {
			if first == nil {
				first = err
			}
			return ""
		}
		return key
	}
	return env, &first
}

// renderPredicate renders and compiles a row-level WHERE predicate
// against ctx's current stream scope.
func renderPredicate(ctx *semantics.Context, c plan.Cond) (*opchain.CompiledExpr, error) {
	env, errOut := newColumnEnv(ctx)
	src, err := opchain.RenderCond(c, env)
	if err != nil {
		return nil, err
	}
	if *errOut != nil {
		return nil, *errOut
	}
	return opchain.CompilePredicate(src)
}

// renderValue renders and compiles a value-returning expression
// against ctx's current stream scope.
func renderValue(ctx *semantics.Context, e plan.Expr) (*opchain.CompiledExpr, error) {
	env, errOut := newColumnEnv(ctx)
	src, err := opchain.RenderExpr(e, env)
	if err != nil {
		return nil, err
	}
	if *errOut != nil {
		return nil, *errOut
	}
	return opchain.CompileValue(src)
}
