// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"strings"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
	"github.com/gemaraproj/ooxml-compliance/internal/similarity"
)

// Corpus is the projected text of one container.
type Corpus struct {
	Main   string
	Footer string
	// Slides holds slide text in logical order; SlideNumbers the matching indexes.
	Slides       []string
	SlideNumbers []int
	Tables       []ooxml.Table
}

// Extractor runs one kind's catalog rules over a Corpus. Rules never fail:
// a pattern that does not match leaves its field nil.
type Extractor struct {
	kind  ooxml.Kind
	rules *catalog.Rules
}

// NewExtractor creates an Extractor for the kind's rules in c.
func NewExtractor(c *catalog.Catalog, kind ooxml.Kind) *Extractor {
	return &Extractor{kind: kind, rules: c.Rules(kind)}
}

// Scopes builds the text window of every scope.
func (e *Extractor) Scopes(c Corpus) map[catalog.Scope]string {
	slides := strings.Join(c.Slides, " ")
	main := c.Main
	if e.kind == ooxml.Slides {
		main = slides
	}
	first := ""
	if len(c.Slides) > 0 {
		first = c.Slides[0]
	}
	return map[catalog.Scope]string{
		catalog.ScopeMain:       main,
		catalog.ScopeFirstPage:  window(main, e.rules.FirstPageWindow),
		catalog.ScopeFooter:     c.Footer,
		catalog.ScopeSlides:     slides,
		catalog.ScopeFirstSlide: first,
	}
}

// window is a fixed character slice, not a layout-aware page.
func window(text string, n int) string {
	if n <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// Extract fills doc from the corpus.
func (e *Extractor) Extract(c Corpus, doc *ExtractedDocument) {
	scopes := e.Scopes(c)
	for scope, text := range scopes {
		if text != "" {
			doc.ScopedText[string(scope)] = text
		}
	}

	for i := range e.rules.Fields {
		rule := &e.rules.Fields[i]
		if doc.Fields[rule.Field] != nil {
			continue
		}
		doc.Fields[rule.Field] = nil
		v, ok := rule.Find(scopes[rule.Scope])
		if !ok {
			continue
		}
		if rule.Date {
			v = similarity.NormalizeDate(v)
		}
		doc.Fields[rule.Field] = &v
	}

	for i := range e.rules.Markers {
		m := &e.rules.Markers[i]
		doc.Markers[m.ID] = Marker{Label: m.Label, Group: m.Group, Present: m.Match(scopes[m.Scope])}
	}

	if d := e.rules.DualIdentifier; d != nil {
		doc.Fields[d.First], doc.Fields[d.Second] = nil, nil
		if first, second, ok := d.Find(scopes[d.Scope]); ok {
			doc.Fields[d.First], doc.Fields[d.Second] = &first, &second
		}
	}

	if ms := e.rules.Milestones; ms != nil {
		if ms.PerSlide {
			doc.Milestones = slideMilestones(ms, c)
		} else {
			doc.Milestones = documentMilestones(ms, scopes[catalog.ScopeMain], c.Tables)
		}
	}

	if st := e.rules.Status; st != nil {
		doc.Status = findStatus(st, c, scopes[catalog.ScopeMain])
	}
}

// documentMilestones merges label-anchored dates from the flattened text
// with dates recovered row by row from tables.
func documentMilestones(ms *catalog.MilestoneRule, text string, tables []ooxml.Table) Milestones {
	out := Milestones{Present: ms.HasMarker(text)}
	dates := ms.LabeledDates(text)
	for _, table := range tables {
		for _, row := range table {
			for i, cell := range row {
				if !ms.IsRowKeyword(cell) {
					continue
				}
				for _, next := range row[i+1:] {
					dates = append(dates, ms.Dates(next)...)
				}
				break
			}
		}
	}
	out.Dates = normalizeDates(dates)
	return out
}

func slideMilestones(ms *catalog.MilestoneRule, c Corpus) Milestones {
	out := Milestones{Dates: []string{}}
	var dates []string
	for i, text := range c.Slides {
		if !ms.HasMarker(text) {
			continue
		}
		out.Present = true
		out.Slides = append(out.Slides, slideNumber(c, i))
		dates = append(dates, ms.Dates(text)...)
	}
	out.Dates = normalizeDates(dates)
	return out
}

// normalizeDates normalizes and de-duplicates, keeping first occurrences.
func normalizeDates(dates []string) []string {
	out := make([]string, 0, len(dates))
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		n := similarity.NormalizeDate(d)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// findStatus scans slides in order and stops at the first hit. A document
// without slides is searched as a single unit.
func findStatus(st *catalog.StatusRule, c Corpus, main string) Status {
	if len(c.Slides) == 0 {
		if v, anchored, ok := st.Find(main); ok {
			return Status{Found: true, Value: v, Anchored: anchored}
		}
		return Status{}
	}
	for i, text := range c.Slides {
		if v, anchored, ok := st.Find(text); ok {
			return Status{Found: true, Value: v, Slide: slideNumber(c, i), Anchored: anchored}
		}
	}
	return Status{}
}

func slideNumber(c Corpus, i int) int {
	if i < len(c.SlideNumbers) {
		return c.SlideNumbers[i]
	}
	return i + 1
}
