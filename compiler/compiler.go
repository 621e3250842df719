package compiler

import (
	"context"

	"github.com/relstream/compiler/catalog"
	"github.com/relstream/compiler/codegen"
	"github.com/relstream/compiler/logger"
	"github.com/relstream/compiler/normalize"
	"github.com/relstream/compiler/plan"
	"github.com/relstream/compiler/semantics"
	"github.com/relstream/compiler/subquery"
)

// Result is everything Compile produces for a well-typed plan: the
// compiled operator pipeline of the driving stream (spec.md §6
// "compiled pipeline description") and the ordered result schema. The
// chains of other streams, such as the right side of a join, are not
// included.
type Result struct {
	Pipeline codegen.Pipeline
	Schema   codegen.ResultSchema
}

// Compile runs the full pipeline of spec.md §2 over p: normalise,
// populate the semantic context, materialise subqueries against rt,
// then generate code. It is the only exported entry point a surface
// front-end or driver needs — everything upstream (SQL/DataFrame
// parsing) and downstream (the streaming runtime itself) is a
// collaborator reached through the Node and subquery.Runtime
// interfaces, never imported here.
func Compile(ctx context.Context, p plan.Node, cat *catalog.Catalog, rt subquery.Runtime, opts Options) (Result, error) {
	log := logger.GetDefault()

	log.Debug("compile: normalize")
	normalized, err := normalize.Plan(p)
	if err != nil {
		return Result{}, err
	}

	log.Debug("compile: populate")
	sctx := semantics.New(cat)
	if err := sctx.Populate(normalized); err != nil {
		return Result{}, err
	}

	log.Debug("compile: materialize subqueries")
	maxDepth := opts.MaxSubqueryDepth
	if maxDepth <= 0 {
		maxDepth = DefaultOptions().MaxSubqueryDepth
	}
	materializer := &subquery.Materializer{Catalog: cat, Runtime: rt, MaxDepth: maxDepth}
	materialized, err := materializer.Materialize(ctx, normalized)
	if err != nil {
		return Result{}, err
	}

	log.Debug("compile: codegen")
	pipeline, schema, err := codegen.Generate(sctx, materialized)
	if err != nil {
		return Result{}, err
	}

	return Result{Pipeline: pipeline, Schema: schema}, nil
}
