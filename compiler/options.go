// Package compiler is the single external entry point: it composes
// catalog resolution, plan normalisation, semantic-context population,
// subquery materialisation, expression typing and codegen into one
// Compile call, logging one DEBUG line per phase through the logger
// package the way the teacher's top-level Streamsql type logs each
// stage of SQL execution (see the teacher's streamsql.go Execute).
package compiler

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relstream/compiler/logger"
)

// Options holds dialect-independent knobs a driver may set: null
// ordering defaults, SELECT-* behaviour after an outer join, how deep
// subquery materialisation may recurse before it is treated as a
// runaway plan (see subquery.Materializer.MaxDepth and spec.md §9's
// "recursion terminates on plans whose depth exceeds runtime safe
// limits"), and a compile timeout. Compile reads only
// MaxSubqueryDepth; the other fields are loaded but not consulted.
type Options struct {
	// NullsFirstDesc is the default null-ordering for a DESC order key
	// with no per-item override: true means nulls sort before values.
	// Codegen does not read it: a DESC key without an override always
	// sorts nulls first.
	NullsFirstDesc bool `yaml:"nullsFirstDesc"`
	// NullsFirstAsc is the default null-ordering for an ASC order key.
	// Codegen does not read it: an ASC key without an override always
	// sorts nulls last.
	NullsFirstAsc bool `yaml:"nullsFirstAsc"`
	// SelectStarIncludesOuterDropped names whether SELECT-* after a
	// LEFT/OUTER join emits fields for the non-matching side's columns.
	// Codegen does not read it: SELECT-* after any join emits every
	// column of both sides.
	SelectStarIncludesOuterDropped bool `yaml:"selectStarIncludesOuterDropped"`
	// MaxSubqueryDepth bounds subquery materialisation recursion.
	MaxSubqueryDepth int `yaml:"maxSubqueryDepth"`
	// CompileTimeout is a per-Compile time budget; zero means none.
	// Compile does not read it and applies no deadline of its own; only
	// a deadline already on the caller's context reaches the runtime.
	CompileTimeout time.Duration `yaml:"compileTimeout"`
}

// DefaultOptions matches spec.md §4.11's fixed defaults: nulls-first
// for DESC, nulls-last for ASC, both overridable per order item.
func DefaultOptions() Options {
	return Options{
		NullsFirstDesc:                 true,
		NullsFirstAsc:                  false,
		SelectStarIncludesOuterDropped: true,
		MaxSubqueryDepth:               64,
		CompileTimeout:                 0,
	}
}

// LoadOptions reads a YAML options document from r, starting from
// DefaultOptions so a partial document only overrides what it names —
// the same merge-over-defaults shape the teacher's WithXxx functional
// options apply over a zero-value Streamsql.
func LoadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	data, err := io.ReadAll(r)
	if err != nil {
		return Options{}, fmt.Errorf("read options: %w", err)
	}
	if len(data) == 0 {
		return opts, nil
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("parse options yaml: %w", err)
	}
	return opts, nil
}

// WithLogLevel sets the package-level default logger's level, mirroring
// the teacher's WithLogLevel functional option.
func WithLogLevel(level logger.Level) {
	logger.GetDefault().SetLevel(level)
}

// WithDiscardLog silences compiler phase/fallback logging entirely.
func WithDiscardLog() {
	logger.SetDefault(logger.NewDiscardLogger())
}
