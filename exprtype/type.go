// Package exprtype assigns a result type to every scalar expression in
// the plan, generalising the teacher's node-by-node expr.validateExpression
// switch (see expr/validator.go) from syntax validation to full numeric
// typing: column references resolve through a semantic context, binary
// arithmetic follows fixed promotion rules, and aggregates get the
// result type their function implies rather than their argument's.
package exprtype

import (
	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/plan"
	"github.com/relstream/compiler/semantics"
)

// Of returns e's result type under ctx. Every call is pure: it neither
// mutates ctx nor the expression tree.
func Of(e plan.Expr, ctx *semantics.Context) (catalog.Type, error) {
	switch v := e.(type) {
	case plan.ColumnRef:
		res, err := ctx.ResolveColumn(v)
		if err != nil {
			return 0, err
		}
		return res.Type, nil

	case plan.Literal:
		return literalType(v)

	case plan.Aggregate:
		return aggregateType(v, ctx)

	case plan.Binary:
		left, err := Of(v.Left, ctx)
		if err != nil {
			return 0, err
		}
		right, err := Of(v.Right, ctx)
		if err != nil {
			return 0, err
		}
		return promote(v.Op, left, right, v.Pos())

	case plan.SubqueryScalar:
		return v.ValueType, nil

	case plan.Subquery:
		return 0, compileerr.At(compileerr.InternalInvariant, v.Pos(), "subquery reached type checking unmaterialised")

	default:
		return 0, compileerr.New(compileerr.InternalInvariant, "unknown expression node %T", e)
	}
}

func literalType(l plan.Literal) (catalog.Type, error) {
	switch l.Kind {
	case plan.LitInt:
		return catalog.I64, nil
	case plan.LitFloat:
		return catalog.F64, nil
	case plan.LitString:
		return catalog.String, nil
	case plan.LitBool:
		return catalog.Bool, nil
	default:
		return 0, compileerr.At(compileerr.InternalInvariant, l.Pos(), "unknown literal kind %d", l.Kind)
	}
}

// aggregateType assigns COUNT the usize tag regardless of its argument,
// AVG always f64 (division is never exact over integers), and
// SUM/MIN/MAX the operand's own type.
func aggregateType(a plan.Aggregate, ctx *semantics.Context) (catalog.Type, error) {
	switch a.Func {
	case plan.AggCount:
		return catalog.Usize, nil
	case plan.AggAvg:
		return catalog.F64, nil
	case plan.AggSum, plan.AggMin, plan.AggMax:
		res, err := ctx.ResolveColumn(a.Arg)
		if err != nil {
			return 0, err
		}
		if !res.Type.IsNumeric() {
			return 0, compileerr.At(compileerr.NonNumericArith, a.Pos(), "%s over non-numeric column %q", a.Func, a.Arg.Column)
		}
		return res.Type, nil
	default:
		return 0, compileerr.At(compileerr.InternalInvariant, a.Pos(), "unknown aggregate function %d", a.Func)
	}
}

// promote implements the arithmetic promotion rules: division always
// yields f64; exponentiation yields f64 when either side is f64 and
// i64 otherwise; +-* over two operands of the same type (i64 or f64)
// keeps that type, i64 mixed with f64 promotes to f64, and any other
// numeric mixture (e.g. involving usize) is a TypeMismatch.
func promote(op plan.BinOp, left, right catalog.Type, pos compileerr.Pos) (catalog.Type, error) {
	if !left.IsNumeric() || !right.IsNumeric() {
		return 0, compileerr.At(compileerr.NonNumericArith, pos, "arithmetic over non-numeric operand (%s, %s)", left, right)
	}
	if op == plan.OpDiv {
		return catalog.F64, nil
	}
	if op == plan.OpPow {
		if left == catalog.F64 || right == catalog.F64 {
			return catalog.F64, nil
		}
		return catalog.I64, nil
	}
	if left == right && (left == catalog.I64 || left == catalog.F64) {
		return left, nil
	}
	if (left == catalog.I64 && right == catalog.F64) || (left == catalog.F64 && right == catalog.I64) {
		return catalog.F64, nil
	}
	return 0, compileerr.At(compileerr.TypeMismatch, pos, "%s over mixed operand types (%s, %s)", op, left, right)
}
