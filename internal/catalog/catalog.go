// SPDX-License-Identifier: Apache-2.0

// Package catalog holds the versioned rule catalogs that drive field
// extraction and the compliance checks. A catalog is plain YAML validated
// against an embedded CUE schema, so rule sets can be swapped without code
// changes.
package catalog

import (
	"embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
)

// DefaultVersion is the built-in catalog used when none is configured.
const DefaultVersion = "v2"

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Scope names a text window a rule reads from.
type Scope string

const (
	ScopeFirstPage  Scope = "first_page"
	ScopeFooter     Scope = "footer"
	ScopeMain       Scope = "main"
	ScopeFirstSlide Scope = "first_slide"
	ScopeSlides     Scope = "slides"
)

// CheckType selects the check implementation for a CheckSpec.
type CheckType string

const (
	CheckFields         CheckType = "fields"
	CheckMarkers        CheckType = "markers"
	CheckWorkbook       CheckType = "workbook"
	CheckMilestones     CheckType = "milestones"
	CheckDateMatch      CheckType = "date_match"
	CheckDualIdentifier CheckType = "dual_identifier"
	CheckStatus         CheckType = "status"
	CheckSlideCount     CheckType = "slide_count"
)

// Catalog is one complete, compiled rule set.
type Catalog struct {
	Version     string            `yaml:"version" json:"version"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Thresholds  Thresholds        `yaml:"thresholds" json:"thresholds"`
	Formats     map[string]string `yaml:"formats,omitempty" json:"formats,omitempty"`
	Word        Rules             `yaml:"word" json:"word"`
	Slides      Rules             `yaml:"slides" json:"slides"`

	formats map[string]*regexp.Regexp
}

type Thresholds struct {
	Match      float64 `yaml:"match" json:"match"`
	Compliance float64 `yaml:"compliance" json:"compliance"`
}

// Rules is the rule set of one document kind.
type Rules struct {
	FirstPageWindow int                 `yaml:"first_page_window,omitempty" json:"first_page_window,omitempty"`
	Fields          []FieldRule         `yaml:"fields" json:"fields"`
	Markers         []MarkerRule        `yaml:"markers,omitempty" json:"markers,omitempty"`
	Milestones      *MilestoneRule      `yaml:"milestones,omitempty" json:"milestones,omitempty"`
	Status          *StatusRule         `yaml:"status,omitempty" json:"status,omitempty"`
	DualIdentifier  *DualIdentifierRule `yaml:"dual_identifier,omitempty" json:"dual_identifier,omitempty"`
	Workbook        *WorkbookRule       `yaml:"workbook,omitempty" json:"workbook,omitempty"`
	SlideBands      []SlideBand         `yaml:"slide_bands,omitempty" json:"slide_bands,omitempty"`
	Checks          []CheckSpec         `yaml:"checks" json:"checks"`
}

// WorkbookRule lists the sheets an embedded workbook must carry.
type WorkbookRule struct {
	RequiredSheets []string `yaml:"required_sheets" json:"required_sheets"`
	// Architecture is the keyword whose presence in any sheet name sets the
	// architecture indicator.
	Architecture string `yaml:"architecture" json:"architecture"`
}

// SlideBand scores decks with at least Min slides. Bands are tried in order.
type SlideBand struct {
	Min    int     `yaml:"min" json:"min"`
	Score  float64 `yaml:"score" json:"score"`
	Passed bool    `yaml:"passed" json:"passed"`
}

// CheckSpec declares one check run for a kind.
type CheckSpec struct {
	Name      string       `yaml:"name" json:"name"`
	Type      CheckType    `yaml:"type" json:"type"`
	Fields    []FieldCheck `yaml:"fields,omitempty" json:"fields,omitempty"`
	Group     string       `yaml:"group,omitempty" json:"group,omitempty"`
	Reference string       `yaml:"reference,omitempty" json:"reference,omitempty"`
}

// FieldCheck compares one extracted field with one reference field. A
// non-empty Format makes it an identifier comparison gated on that format.
type FieldCheck struct {
	Field     string `yaml:"field" json:"field"`
	Reference string `yaml:"reference" json:"reference"`
	Format    string `yaml:"format,omitempty" json:"format,omitempty"`
}

// Builtin returns the embedded catalog with the given version.
func Builtin(version string) (*Catalog, error) {
	if version == "" {
		version = DefaultVersion
	}
	data, err := builtinFS.ReadFile("builtin/" + version + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown catalog version %q (available: %s)", version, strings.Join(Versions(), ", "))
	}
	return Parse(version+".yaml", data)
}

// Versions lists the embedded catalog versions.
func Versions() []string {
	entries, _ := builtinFS.ReadDir("builtin")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out
}

// Load reads a catalog file from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(path, data)
}

// Parse validates and compiles catalog YAML.
func Parse(name string, data []byte) (*Catalog, error) {
	if err := validateSchema(name, data); err != nil {
		return nil, err
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", name, err)
	}
	if err := c.compile(); err != nil {
		return nil, fmt.Errorf("compiling catalog %s: %w", name, err)
	}
	return &c, nil
}

// Rules returns the rule set for a kind.
func (c *Catalog) Rules(kind ooxml.Kind) *Rules {
	if kind == ooxml.Slides {
		return &c.Slides
	}
	return &c.Word
}

// Format returns the compiled identifier format, or nil when name is empty.
func (c *Catalog) Format(name string) *regexp.Regexp {
	if name == "" {
		return nil
	}
	return c.formats[name]
}

func (c *Catalog) compile() error {
	c.formats = make(map[string]*regexp.Regexp, len(c.Formats))
	for name, pattern := range c.Formats {
		re, err := compilePattern(pattern)
		if err != nil {
			return fmt.Errorf("format %s: %w", name, err)
		}
		c.formats[name] = re
	}
	for _, k := range []struct {
		name  string
		rules *Rules
	}{{"word", &c.Word}, {"slides", &c.Slides}} {
		if err := k.rules.compile(); err != nil {
			return fmt.Errorf("%s: %w", k.name, err)
		}
		if err := c.checkRefs(k.rules); err != nil {
			return fmt.Errorf("%s: %w", k.name, err)
		}
	}
	return nil
}

// checkRefs verifies that every check has the rule block it needs.
func (c *Catalog) checkRefs(r *Rules) error {
	seen := make(map[string]bool, len(r.Checks))
	for _, chk := range r.Checks {
		if seen[chk.Name] {
			return fmt.Errorf("duplicate check %q", chk.Name)
		}
		seen[chk.Name] = true
		for _, f := range chk.Fields {
			if f.Format != "" && c.formats[f.Format] == nil {
				return fmt.Errorf("check %s: unknown format %q", chk.Name, f.Format)
			}
		}
		var missing string
		switch chk.Type {
		case CheckFields:
			if len(chk.Fields) == 0 {
				missing = "fields"
			}
		case CheckMarkers:
			if chk.Group == "" {
				missing = "group"
			}
		case CheckWorkbook:
			if r.Workbook == nil {
				missing = "workbook"
			}
		case CheckMilestones:
			if r.Milestones == nil {
				missing = "milestones"
			}
		case CheckDateMatch:
			if r.Milestones == nil || chk.Reference == "" {
				missing = "milestones and reference"
			}
		case CheckDualIdentifier:
			if r.DualIdentifier == nil || len(chk.Fields) == 0 {
				missing = "dual_identifier and fields"
			}
		case CheckStatus:
			if r.Status == nil {
				missing = "status"
			}
		case CheckSlideCount:
			if len(r.SlideBands) == 0 {
				missing = "slide_bands"
			}
		default:
			return fmt.Errorf("check %s: unknown type %q", chk.Name, chk.Type)
		}
		if missing != "" {
			return fmt.Errorf("check %s (%s) requires %s", chk.Name, chk.Type, missing)
		}
	}
	return nil
}
