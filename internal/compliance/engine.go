// SPDX-License-Identifier: Apache-2.0

package compliance

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gemaraproj/ooxml-compliance/internal/evidence"
	"github.com/gemaraproj/ooxml-compliance/internal/reference"
)

// DefaultWorkers bounds concurrent checks when no width is configured.
const DefaultWorkers = 4

// Engine runs checks on a bounded pool of goroutines.
type Engine struct {
	workers int
	levels  Levels
	logger  *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the pool width. Values below 1 run checks one at a time.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithLevels sets the score bands used to name the compliance level.
func WithLevels(l Levels) Option {
	return func(e *Engine) { e.levels = l }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{workers: DefaultWorkers, levels: DefaultLevels, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Workers returns the pool width.
func (e *Engine) Workers() int { return e.workers }

// Run executes checks and aggregates their results into a report for doc.
func (e *Engine) Run(ctx context.Context, checks []Check, doc *evidence.ExtractedDocument, ref reference.Record) Report {
	rep := Aggregate(e.Execute(ctx, checks, doc, ref), e.levels)
	rep.DocumentID = doc.ID
	rep.Kind = doc.Kind
	rep.CatalogVersion = doc.CatalogVersion
	rep.Warnings = doc.Warnings
	return rep
}

// Execute runs every check and returns results in check order. A check
// that fails never stops the others; a check not started before ctx is
// done fails with the context error.
func (e *Engine) Execute(ctx context.Context, checks []Check, doc *evidence.ExtractedDocument, ref reference.Record) []CheckResult {
	results := make([]CheckResult, len(checks))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, c := range checks {
		if err := ctx.Err(); err != nil {
			results[i] = failed(c.Name, err)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = failed(c.Name, err)
				return nil
			}
			results[i] = e.runOne(c, doc, ref)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// runOne isolates a check: a panic or error becomes a failed result.
func (e *Engine) runOne(c Check, doc *evidence.ExtractedDocument, ref reference.Record) (res CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("check panicked", zap.String("check", c.Name), zap.Any("panic", r))
			res = failed(c.Name, fmt.Errorf("%w: %s: panic: %v", ErrCheckExecution, c.Name, r))
		}
	}()

	out, err := c.Run(doc, ref)
	if err != nil {
		e.logger.Warn("check failed", zap.String("check", c.Name), zap.Error(err))
		return failed(c.Name, fmt.Errorf("%w: %s: %w", ErrCheckExecution, c.Name, err))
	}
	out.Name = c.Name
	out.Score = clamp(out.Score)
	e.logger.Debug("check done",
		zap.String("check", c.Name),
		zap.Bool("passed", out.Passed),
		zap.Float64("score", out.Score))
	return out
}
