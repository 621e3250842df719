package opchain

import (
	"fmt"
	"strconv"

	"github.com/relstream/compiler/compileerr"
	"github.com/relstream/compiler/plan"
)

// ColumnEnv resolves a column reference to the identifier it is bound
// under in the expr-lang evaluation environment. Codegen supplies the
// concrete resolver (backed by the semantic context's alias/struct
// naming), keeping this package free of any dependency on it.
type ColumnEnv func(plan.ColumnRef) string

// RenderExpr turns a scalar expression into expr-lang source text,
// wrapping arithmetic in null-propagation guards since every column is
// implicitly nullable. Aggregate and unmaterialised Subquery nodes are
// rejected: by the time codegen renders an expression, the subquery
// materialiser and the group-by fold step must already have replaced
// them with a concrete value or slot reference.
func RenderExpr(e plan.Expr, env ColumnEnv) (string, error) {
	switch v := e.(type) {
	case plan.ColumnRef:
		return env(v), nil
	case plan.Literal:
		return renderLiteral(v)
	case plan.Binary:
		left, err := RenderExpr(v.Left, env)
		if err != nil {
			return "", err
		}
		right, err := RenderExpr(v.Right, env)
		if err != nil {
			return "", err
		}
		op, err := renderBinOp(v.Op)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("((%s == nil || %s == nil) ? nil : (%s %s %s))", left, right, left, op, right), nil
	case plan.SubqueryScalar:
		return renderLiteral(v.Value)
	case plan.Aggregate:
		return "", compileerr.New(compileerr.InternalInvariant, "aggregate %s reached expression rendering unresolved", v.Func)
	case plan.Subquery:
		return "", compileerr.New(compileerr.InternalInvariant, "subquery reached expression rendering unmaterialised")
	default:
		return "", compileerr.New(compileerr.InternalInvariant, "unrenderable expression node %T", e)
	}
}

// RenderCond turns a predicate tree into expr-lang boolean source.
// Comparisons and null checks use AllowUndefinedVariables-compatible
// nil tests so a record missing a field (rather than carrying an
// explicit nil) still evaluates instead of panicking.
func RenderCond(c plan.Cond, env ColumnEnv) (string, error) {
	switch v := c.(type) {
	case plan.Comparison:
		left, err := RenderExpr(v.Left, env)
		if err != nil {
			return "", err
		}
		right, err := RenderExpr(v.Right, env)
		if err != nil {
			return "", err
		}
		op := v.Op.String()
		return fmt.Sprintf("(%s == nil || %s == nil) ? false : (%s %s %s)", left, right, left, op, right), nil
	case plan.NullCheck:
		target, err := RenderExpr(v.Target, env)
		if err != nil {
			return "", err
		}
		if v.Not {
			return fmt.Sprintf("is_not_null(%s)", target), nil
		}
		return fmt.Sprintf("is_null(%s)", target), nil
	case plan.Between:
		target, err := RenderExpr(v.Target, env)
		if err != nil {
			return "", err
		}
		lo, err := RenderExpr(v.Lo, env)
		if err != nil {
			return "", err
		}
		hi, err := RenderExpr(v.Hi, env)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s == nil || %s == nil || %s == nil) ? false : (%s >= %s && %s <= %s)",
			target, lo, hi, target, lo, target, hi), nil
	case plan.InCond:
		target, err := RenderExpr(v.Target, env)
		if err != nil {
			return "", err
		}
		set := "["
		for i, lit := range v.Values.Values {
			if i > 0 {
				set += ", "
			}
			s, err := renderLiteral(lit)
			if err != nil {
				return "", err
			}
			set += s
		}
		set += "]"
		if v.Not {
			return fmt.Sprintf("%s == nil ? false : !(%s in %s)", target, target, set), nil
		}
		return fmt.Sprintf("%s == nil ? false : (%s in %s)", target, target, set), nil
	case plan.BoolLit:
		if v.Value {
			return "true", nil
		}
		return "false", nil
	case plan.And:
		left, err := RenderCond(v.Left, env)
		if err != nil {
			return "", err
		}
		right, err := RenderCond(v.Right, env)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) && (%s)", left, right), nil
	case plan.Or:
		left, err := RenderCond(v.Left, env)
		if err != nil {
			return "", err
		}
		right, err := RenderCond(v.Right, env)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s) || (%s)", left, right), nil
	default:
		return "", compileerr.New(compileerr.InternalInvariant, "unrenderable condition node %T", c)
	}
}

func renderLiteral(l plan.Literal) (string, error) {
	switch l.Kind {
	case plan.LitInt:
		return strconv.FormatInt(l.Value.(int64), 10), nil
	case plan.LitFloat:
		return strconv.FormatFloat(l.Value.(float64), 'g', -1, 64), nil
	case plan.LitString:
		return strconv.Quote(l.Value.(string)), nil
	case plan.LitBool:
		return strconv.FormatBool(l.Value.(bool)), nil
	default:
		return "", compileerr.New(compileerr.InternalInvariant, "unknown literal kind %d", l.Kind)
	}
}

// RenderLiteral exposes renderLiteral to callers outside this package
// that render expr-lang source from a shape other than a full Expr/Cond
// tree (codegen's post-fold aggregate expression renderer).
func RenderLiteral(l plan.Literal) (string, error) { return renderLiteral(l) }

// BinOpSymbol exposes renderBinOp to callers outside this package for
// the same reason as RenderLiteral.
func BinOpSymbol(op plan.BinOp) (string, error) { return renderBinOp(op) }

func renderBinOp(op plan.BinOp) (string, error) {
	switch op {
	case plan.OpAdd:
		return "+", nil
	case plan.OpSub:
		return "-", nil
	case plan.OpMul:
		return "*", nil
	case plan.OpDiv:
		return "/", nil
	case plan.OpPow:
		return "**", nil
	default:
		return "", compileerr.New(compileerr.InternalInvariant, "unknown binary operator %d", op)
	}
}
