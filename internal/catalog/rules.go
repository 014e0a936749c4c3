// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldRule captures a single value from a scoped text window.
type FieldRule struct {
	ID      string `yaml:"id" json:"id"`
	Field   string `yaml:"field" json:"field"`
	Scope   Scope  `yaml:"scope" json:"scope"`
	Pattern string `yaml:"pattern" json:"pattern"`
	// Date marks values that are date-normalized after capture.
	Date bool `yaml:"date,omitempty" json:"date,omitempty"`

	re *regexp.Regexp
}

// Find returns the trimmed first capture group of the first match.
func (r *FieldRule) Find(text string) (string, bool) {
	m := r.re.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	v := strings.TrimSpace(m[1])
	return v, v != ""
}

// MarkerRule is a presence test over a scope's full text.
type MarkerRule struct {
	ID      string `yaml:"id" json:"id"`
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
	Group   string `yaml:"group" json:"group"`
	Scope   Scope  `yaml:"scope" json:"scope"`
	Pattern string `yaml:"pattern" json:"pattern"`

	re *regexp.Regexp
}

func (r *MarkerRule) Match(text string) bool { return r.re.MatchString(text) }

// MilestoneRule drives milestone detection and date recovery.
type MilestoneRule struct {
	// Marker detects the milestone section (or, per slide, a milestone slide).
	Marker string `yaml:"marker" json:"marker"`
	// Labeled captures a date anchored on a label anywhere in the main text.
	Labeled string `yaml:"labeled,omitempty" json:"labeled,omitempty"`
	// Date finds date-shaped substrings in table cells and milestone slides.
	Date string `yaml:"date" json:"date"`
	// RowKeywords select table rows whose later cells hold milestone dates.
	RowKeywords []string `yaml:"row_keywords,omitempty" json:"row_keywords,omitempty"`
	PerSlide    bool     `yaml:"per_slide,omitempty" json:"per_slide,omitempty"`

	marker  *regexp.Regexp
	labeled *regexp.Regexp
	date    *regexp.Regexp
	rows    []*regexp.Regexp
}

func (r *MilestoneRule) HasMarker(text string) bool { return r.marker.MatchString(text) }

// LabeledDates returns every label-anchored date capture in text order.
func (r *MilestoneRule) LabeledDates(text string) []string {
	if r.labeled == nil {
		return nil
	}
	var out []string
	for _, m := range r.labeled.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}

// Dates returns every date-shaped substring of text.
func (r *MilestoneRule) Dates(text string) []string {
	return r.date.FindAllString(text, -1)
}

// IsRowKeyword reports whether a table cell names a milestone.
func (r *MilestoneRule) IsRowKeyword(cell string) bool {
	for _, re := range r.rows {
		if re.MatchString(cell) {
			return true
		}
	}
	return false
}

// StatusRule finds a status value on the first slide that carries one.
type StatusRule struct {
	Patterns []StatusPattern `yaml:"patterns" json:"patterns"`
	// Values, when set, restricts accepted captures (compared upper-cased).
	Values          []string `yaml:"values,omitempty" json:"values,omitempty"`
	AnchoredScore   float64  `yaml:"anchored_score" json:"anchored_score"`
	UnanchoredScore float64  `yaml:"unanchored_score" json:"unanchored_score"`
}

// StatusPattern captures the status value. Anchored patterns require the
// status header and earn the higher score.
type StatusPattern struct {
	Pattern  string `yaml:"pattern" json:"pattern"`
	Anchored bool   `yaml:"anchored,omitempty" json:"anchored,omitempty"`

	re *regexp.Regexp
}

// Find tries the patterns in order against one slide's text.
func (r *StatusRule) Find(text string) (value string, anchored, ok bool) {
	for i := range r.Patterns {
		p := &r.Patterns[i]
		m := p.re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		v := strings.TrimSpace(m[1])
		if v == "" || !r.accepts(v) {
			continue
		}
		if len(r.Values) > 0 {
			v = strings.ToUpper(v)
		}
		return v, p.Anchored, true
	}
	return "", false, false
}

func (r *StatusRule) accepts(v string) bool {
	if len(r.Values) == 0 {
		return true
	}
	for _, allowed := range r.Values {
		if strings.EqualFold(v, allowed) {
			return true
		}
	}
	return false
}

// DualIdentifierRule captures two identifiers joined by a hyphen.
type DualIdentifierRule struct {
	Scope   Scope  `yaml:"scope" json:"scope"`
	Pattern string `yaml:"pattern" json:"pattern"`
	// First and Second name the fields that receive the two captures.
	First  string `yaml:"first" json:"first"`
	Second string `yaml:"second" json:"second"`

	re *regexp.Regexp
}

func (r *DualIdentifierRule) Find(text string) (first, second string, ok bool) {
	m := r.re.FindStringSubmatch(text)
	if len(m) < 3 {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), true
}

// Band returns the first band the slide count qualifies for.
func (r *Rules) Band(slides int) (SlideBand, bool) {
	for _, b := range r.SlideBands {
		if slides >= b.Min {
			return b, true
		}
	}
	return SlideBand{}, false
}

// MarkersIn returns the marker rules of a group.
func (r *Rules) MarkersIn(group string) []MarkerRule {
	var out []MarkerRule
	for _, m := range r.Markers {
		if m.Group == group {
			out = append(out, m)
		}
	}
	return out
}

func (r *Rules) compile() error {
	var err error
	for i := range r.Fields {
		f := &r.Fields[i]
		if f.re, err = compilePattern(f.Pattern); err != nil {
			return fmt.Errorf("field rule %s: %w", f.ID, err)
		}
		if f.re.NumSubexp() < 1 {
			return fmt.Errorf("field rule %s: pattern needs a capture group", f.ID)
		}
	}
	for i := range r.Markers {
		m := &r.Markers[i]
		if m.re, err = compilePattern(m.Pattern); err != nil {
			return fmt.Errorf("marker %s: %w", m.ID, err)
		}
	}
	if ms := r.Milestones; ms != nil {
		if ms.marker, err = compilePattern(ms.Marker); err != nil {
			return fmt.Errorf("milestones marker: %w", err)
		}
		if ms.date, err = compilePattern(ms.Date); err != nil {
			return fmt.Errorf("milestones date: %w", err)
		}
		if ms.Labeled != "" {
			if ms.labeled, err = compilePattern(ms.Labeled); err != nil {
				return fmt.Errorf("milestones labeled: %w", err)
			}
			if ms.labeled.NumSubexp() < 1 {
				return fmt.Errorf("milestones labeled: pattern needs a capture group")
			}
		}
		ms.rows = make([]*regexp.Regexp, 0, len(ms.RowKeywords))
		for _, kw := range ms.RowKeywords {
			re, err := compilePattern(kw)
			if err != nil {
				return fmt.Errorf("milestones row keyword: %w", err)
			}
			ms.rows = append(ms.rows, re)
		}
	}
	if st := r.Status; st != nil {
		for i := range st.Patterns {
			p := &st.Patterns[i]
			if p.re, err = compilePattern(p.Pattern); err != nil {
				return fmt.Errorf("status pattern %d: %w", i, err)
			}
			if p.re.NumSubexp() < 1 {
				return fmt.Errorf("status pattern %d: pattern needs a capture group", i)
			}
		}
	}
	if d := r.DualIdentifier; d != nil {
		if d.re, err = compilePattern(d.Pattern); err != nil {
			return fmt.Errorf("dual identifier: %w", err)
		}
		if d.re.NumSubexp() < 2 {
			return fmt.Errorf("dual identifier: pattern needs two capture groups")
		}
	}
	return nil
}

// compilePattern compiles a catalog pattern; all matching is case-insensitive.
func compilePattern(p string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + p)
}
