// SPDX-License-Identifier: Apache-2.0

// Package compliance runs catalog checks against an extracted document and
// a reference record, and folds their results into one report.
package compliance

import (
	"errors"

	"github.com/gemaraproj/ooxml-compliance/internal/evidence"
	"github.com/gemaraproj/ooxml-compliance/internal/reference"
)

// ErrCheckExecution marks a check that panicked or returned an error.
var ErrCheckExecution = errors.New("check execution failed")

// CheckResult is the outcome of one check.
type CheckResult struct {
	Name    string         `json:"name" yaml:"name"`
	Passed  bool           `json:"passed" yaml:"passed"`
	Score   float64        `json:"score" yaml:"score"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Errors  []string       `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Check is a named, independent verification. Run must treat doc and ref as
// read-only; it may be called concurrently with other checks.
type Check struct {
	Name string
	Run  func(doc *evidence.ExtractedDocument, ref reference.Record) (CheckResult, error)
}

func failed(name string, err error) CheckResult {
	return CheckResult{Name: name, Score: 0, Errors: []string{err.Error()}}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
