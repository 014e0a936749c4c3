// SPDX-License-Identifier: Apache-2.0

package compliance

import (
	"errors"
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/evidence"
	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
	"github.com/gemaraproj/ooxml-compliance/internal/reference"
	"github.com/gemaraproj/ooxml-compliance/internal/similarity"
)

// Pass marks for the structural checks.
const (
	markersPass    = 0.6
	workbookPass   = 0.7
	milestonesPass = 0.6
)

// ChecksFor builds the checks the catalog declares for kind, in catalog
// order.
func ChecksFor(c *catalog.Catalog, kind ooxml.Kind) ([]Check, error) {
	rules := c.Rules(kind)
	checks := make([]Check, 0, len(rules.Checks))
	for _, spec := range rules.Checks {
		run, err := build(c, rules, spec)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", spec.Name, err)
		}
		checks = append(checks, Check{Name: spec.Name, Run: run})
	}
	return checks, nil
}

type runFunc func(*evidence.ExtractedDocument, reference.Record) (CheckResult, error)

func build(c *catalog.Catalog, rules *catalog.Rules, spec catalog.CheckSpec) (runFunc, error) {
	switch spec.Type {
	case catalog.CheckFields:
		return fieldsCheck(c, spec.Fields), nil
	case catalog.CheckMarkers:
		return markersCheck(rules, spec.Group), nil
	case catalog.CheckWorkbook:
		return workbookCheck, nil
	case catalog.CheckMilestones:
		return milestonesCheck, nil
	case catalog.CheckDateMatch:
		return dateMatchCheck(spec.Reference), nil
	case catalog.CheckDualIdentifier:
		return dualIdentifierCheck(c, spec.Fields), nil
	case catalog.CheckStatus:
		return statusCheck(rules.Status), nil
	case catalog.CheckSlideCount:
		return slideCountCheck(rules), nil
	default:
		return nil, fmt.Errorf("unknown check type %q", spec.Type)
	}
}

// matchField compares one extracted field with its reference candidates.
// Identifier fields require their format and an exact (case-insensitive)
// value; free-text fields use similarity against the match threshold.
func matchField(c *catalog.Catalog, fc catalog.FieldCheck, value string, candidates []string) similarity.Result {
	if fc.Format != "" {
		return similarity.MatchIdentifier(c.Format(fc.Format), value, candidates)
	}
	threshold := c.Thresholds.Match
	if threshold <= 0 {
		threshold = similarity.DefaultThreshold
	}
	return similarity.Match(value, candidates, threshold)
}

// fieldsCheck passes when every comparable field matches. Its score is the
// mean of the per-field scores; a field missing from the document scores 0.
// Fields without reference values are left out of both.
func fieldsCheck(c *catalog.Catalog, fields []catalog.FieldCheck) runFunc {
	return func(doc *evidence.ExtractedDocument, ref reference.Record) (CheckResult, error) {
		res := CheckResult{Passed: true, Details: map[string]any{}}
		var scores stats.Float64Data
		var unavailable []string

		for _, fc := range fields {
			candidates := ref.Values(fc.Reference)
			if len(candidates) == 0 {
				unavailable = append(unavailable, fc.Reference)
				continue
			}
			value, ok := doc.Field(fc.Field)
			if !ok {
				res.Passed = false
				res.Errors = append(res.Errors, fc.Field+" not found in document")
				res.Details[fc.Field] = map[string]any{"found": false, "reference_values": candidates}
				scores = append(scores, 0)
				continue
			}
			m := matchField(c, fc, value, candidates)
			if !m.Matched {
				res.Passed = false
			}
			scores = append(scores, m.Score)
			res.Details[fc.Field] = map[string]any{
				"found":            true,
				"document_value":   value,
				"reference_values": candidates,
				"best_match":       m.Best,
				"score":            m.Score,
				"matched":          m.Matched,
			}
		}

		if len(unavailable) > 0 {
			res.Details["unavailable_reference"] = unavailable
		}
		if len(scores) == 0 {
			res.Passed = false
			res.Errors = append(res.Errors, "no reference values available")
			return res, nil
		}
		mean, err := stats.Mean(scores)
		if err != nil {
			return CheckResult{}, err
		}
		res.Score = mean
		return res, nil
	}
}

// markersCheck scores the share of a group's markers present in the
// document.
func markersCheck(rules *catalog.Rules, group string) runFunc {
	markers := rules.MarkersIn(group)
	headers := rules.MarkersIn("toc_header")
	return func(doc *evidence.ExtractedDocument, _ reference.Record) (CheckResult, error) {
		if len(markers) == 0 {
			return CheckResult{}, fmt.Errorf("marker group %q is empty", group)
		}
		found, missing := []string{}, []string{}
		for _, m := range markers {
			label := m.Label
			if label == "" {
				label = m.ID
			}
			if doc.Markers[m.ID].Present {
				found = append(found, label)
			} else {
				missing = append(missing, label)
			}
		}
		hasHeader := false
		for _, h := range headers {
			hasHeader = hasHeader || doc.Markers[h.ID].Present
		}

		score := float64(len(found)) / float64(len(markers))
		res := CheckResult{
			Passed: score >= markersPass,
			Score:  score,
			Details: map[string]any{
				"found":    found,
				"missing":  missing,
				"required": len(markers),
			},
		}
		if len(headers) > 0 {
			res.Details["has_header"] = hasHeader
		}
		return res, nil
	}
}

// workbookCheck scores the best embedded workbook: required sheets weigh
// 0.8 and the architecture indicator 0.2.
func workbookCheck(doc *evidence.ExtractedDocument, _ reference.Record) (CheckResult, error) {
	if len(doc.Embedded) == 0 {
		return CheckResult{Errors: []string{"no embedded workbook found"}, Details: map[string]any{"workbooks": 0}}, nil
	}
	best, bestScore := -1, -1.0
	for i, wb := range doc.Embedded {
		s := workbookScore(wb)
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	wb := doc.Embedded[best]
	var missing []string
	for sheet, ok := range wb.RequiredSheets {
		if !ok {
			missing = append(missing, sheet)
		}
	}
	sort.Strings(missing)
	return CheckResult{
		Passed: bestScore >= workbookPass,
		Score:  bestScore,
		Details: map[string]any{
			"workbooks":      len(doc.Embedded),
			"path":           wb.Path,
			"sheet_names":    wb.SheetNames,
			"required_found": wb.RequiredFound(),
			"required_total": len(wb.RequiredSheets),
			"missing_sheets": missing,
			"architecture":   wb.Architecture,
		},
	}, nil
}

func workbookScore(wb evidence.EmbeddedContainerInfo) float64 {
	s := 0.0
	if n := len(wb.RequiredSheets); n > 0 {
		s = 0.8 * float64(wb.RequiredFound()) / float64(n)
	}
	if wb.Architecture {
		s += 0.2
	}
	return s
}

// milestonesCheck gives 0.6 for a milestone section and 0.4 more when it
// carries dates.
func milestonesCheck(doc *evidence.ExtractedDocument, _ reference.Record) (CheckResult, error) {
	ms := doc.Milestones
	res := CheckResult{Details: map[string]any{"present": ms.Present, "dates": ms.Dates}}
	if len(ms.Slides) > 0 {
		res.Details["slides"] = ms.Slides
	}
	if !ms.Present {
		res.Errors = []string{"milestone section not found"}
		return res, nil
	}
	res.Score = 0.6
	if len(ms.Dates) > 0 {
		res.Score += 0.4
	}
	res.Score = clamp(res.Score)
	res.Passed = res.Score >= milestonesPass
	return res, nil
}

// dateMatchCheck passes when the normalized reference date is among the
// document's milestone dates.
func dateMatchCheck(field string) runFunc {
	return func(doc *evidence.ExtractedDocument, ref reference.Record) (CheckResult, error) {
		want, ok := ref.First(field)
		if !ok {
			return CheckResult{Errors: []string{"reference " + field + " not available"}}, nil
		}
		want = similarity.NormalizeDate(want)
		res := CheckResult{Details: map[string]any{"reference_date": want, "document_dates": doc.Milestones.Dates}}
		if len(doc.Milestones.Dates) == 0 {
			res.Errors = []string{"no implementation dates found in document"}
			return res, nil
		}
		for _, d := range doc.Milestones.Dates {
			if d == want {
				res.Passed, res.Score = true, 1
				res.Details["matched_date"] = d
				return res, nil
			}
		}
		return res, nil
	}
}

// dualIdentifierCheck compares both halves of the hyphen-joined identifier.
// Each half earns an equal share of the score; both must match to pass.
func dualIdentifierCheck(c *catalog.Catalog, fields []catalog.FieldCheck) runFunc {
	return func(doc *evidence.ExtractedDocument, ref reference.Record) (CheckResult, error) {
		res := CheckResult{Details: map[string]any{}}
		matched := 0
		for _, fc := range fields {
			value, ok := doc.Field(fc.Field)
			if !ok {
				res.Errors = []string{"dual identifier not found"}
				res.Details["found"] = false
				return res, nil
			}
			candidates := ref.Values(fc.Reference)
			m := matchField(c, fc, value, candidates)
			if m.Matched {
				matched++
			}
			res.Details[fc.Field] = map[string]any{
				"document_value":   value,
				"reference_values": candidates,
				"matched":          m.Matched,
			}
		}
		res.Details["found"] = true
		res.Score = float64(matched) / float64(len(fields))
		res.Passed = matched == len(fields)
		return res, nil
	}
}

// statusCheck passes when a status was found; header-anchored values score
// higher.
func statusCheck(rule *catalog.StatusRule) runFunc {
	return func(doc *evidence.ExtractedDocument, _ reference.Record) (CheckResult, error) {
		st := doc.Status
		if !st.Found {
			return CheckResult{Errors: []string{"status not found"}, Details: map[string]any{"found": false}}, nil
		}
		score := rule.UnanchoredScore
		if st.Anchored {
			score = rule.AnchoredScore
		}
		return CheckResult{
			Passed: true,
			Score:  score,
			Details: map[string]any{
				"found":    true,
				"value":    st.Value,
				"slide":    st.Slide,
				"anchored": st.Anchored,
			},
		}, nil
	}
}

// slideCountCheck scores the deck size by the first qualifying band.
func slideCountCheck(rules *catalog.Rules) runFunc {
	recommended := 0
	for _, b := range rules.SlideBands {
		if b.Passed && (recommended == 0 || b.Min < recommended) {
			recommended = b.Min
		}
	}
	return func(doc *evidence.ExtractedDocument, _ reference.Record) (CheckResult, error) {
		band, ok := rules.Band(doc.SlideCount)
		if !ok {
			return CheckResult{}, errors.New("no slide band covers the deck")
		}
		res := CheckResult{
			Passed:  band.Passed,
			Score:   band.Score,
			Details: map[string]any{"slide_count": doc.SlideCount},
		}
		if !band.Passed && recommended > 0 {
			res.Details["recommendation"] = fmt.Sprintf("add slides: at least %d expected", recommended)
		}
		return res, nil
	}
}
