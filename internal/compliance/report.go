// SPDX-License-Identifier: Apache-2.0

package compliance

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
)

// Level names a band of the overall score.
type Level string

const (
	FullyCompliant     Level = "Fully Compliant"
	Compliant          Level = "Compliant"
	PartiallyCompliant Level = "Partially Compliant"
	NonCompliant       Level = "Non-compliant"
)

// Levels holds the lower bound of each band.
type Levels struct {
	Full      float64
	Compliant float64
	Partial   float64
}

var DefaultLevels = Levels{Full: 0.9, Compliant: 0.6, Partial: 0.4}

// For returns the level of score. Bounds are inclusive.
func (l Levels) For(score float64) Level {
	switch {
	case score >= l.Full:
		return FullyCompliant
	case score >= l.Compliant:
		return Compliant
	case score >= l.Partial:
		return PartiallyCompliant
	default:
		return NonCompliant
	}
}

// Report is the verdict for one document.
type Report struct {
	DocumentID      string     `json:"document_id" yaml:"document_id"`
	Kind            ooxml.Kind `json:"kind" yaml:"kind"`
	CatalogVersion  string     `json:"catalog_version" yaml:"catalog_version"`
	OverallScore    float64    `json:"overall_score" yaml:"overall_score"`
	ComplianceLevel Level      `json:"compliance_level" yaml:"compliance_level"`
	PassedChecks    int        `json:"passed_checks" yaml:"passed_checks"`
	TotalChecks     int        `json:"total_checks" yaml:"total_checks"`
	PassRate        float64    `json:"pass_rate" yaml:"pass_rate"`
	// Results are sorted by check name.
	Results  []CheckResult `json:"results" yaml:"results"`
	Warnings []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Result returns the result of the named check.
func (r Report) Result(name string) (CheckResult, bool) {
	i := sort.Search(len(r.Results), func(i int) bool { return r.Results[i].Name >= name })
	if i < len(r.Results) && r.Results[i].Name == name {
		return r.Results[i], true
	}
	return CheckResult{}, false
}

// Aggregate folds results into a report. The overall score is the
// unweighted mean of the check scores; no checks score 0.
func Aggregate(results []CheckResult, levels Levels) Report {
	sorted := make([]CheckResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	rep := Report{Results: sorted, TotalChecks: len(sorted)}
	scores := make(stats.Float64Data, 0, len(sorted))
	for _, r := range sorted {
		scores = append(scores, r.Score)
		if r.Passed {
			rep.PassedChecks++
		}
	}
	if mean, err := stats.Mean(scores); err == nil {
		rep.OverallScore = clamp(mean)
	}
	if rep.TotalChecks > 0 {
		rep.PassRate = float64(rep.PassedChecks) / float64(rep.TotalChecks)
	}
	rep.ComplianceLevel = levels.For(rep.OverallScore)
	return rep
}
