// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"context"
	"fmt"

	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
)

type Pipeline struct {
	analyzers []Analyzer
}

// NewPipeline creates a new Pipeline with the provided analyzers.
func NewPipeline(analyzers ...Analyzer) *Pipeline {
	return &Pipeline{analyzers: analyzers}
}

// RunResult is the output of a successful pipeline run.
type RunResult struct {
	Document     *ExtractedDocument
	AnalyzerUsed string
}

// Analyze extracts the document. Only a malformed container is an error;
// every other problem is recorded in the document's warnings.
func (p *Pipeline) Analyze(ctx context.Context, source Source) (*ExtractedDocument, error) {
	result, err := p.RunWithMeta(ctx, source)
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

func (p *Pipeline) RunWithMeta(ctx context.Context, source Source) (RunResult, error) {
	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}
	analyzer, err := p.selectAnalyzer(source)
	if err != nil {
		return RunResult{}, err
	}

	doc, err := analyzer.Analyze(ctx, source)
	if err != nil {
		return RunResult{}, fmt.Errorf("analyzer %q failed: %w", analyzer.Name(), err)
	}
	return RunResult{Document: doc, AnalyzerUsed: analyzer.Name()}, nil
}

// selectAnalyzer returns the first registered analyzer that can handle the given source.
func (p *Pipeline) selectAnalyzer(source Source) (Analyzer, error) {
	if source.Kind == "" {
		if _, err := ooxml.Detect(source.Content); err != nil {
			return nil, err
		}
	}
	for _, a := range p.analyzers {
		if a.CanHandle(source) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("unsupported document kind: no analyzer found for source %q (kind hint: %q)", source.ID, source.Kind)
}

// RegisteredAnalyzers returns the names of all currently registered analyzers.
func (p *Pipeline) RegisteredAnalyzers() []string {
	names := make([]string, len(p.analyzers))
	for i, a := range p.analyzers {
		names[i] = a.Name()
	}
	return names
}
