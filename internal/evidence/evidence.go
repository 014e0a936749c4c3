// SPDX-License-Identifier: Apache-2.0

package evidence

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
)

// documentNamespace seeds the name-based document IDs.
var documentNamespace = uuid.MustParse("6f1d4c8e-3a5b-4f7e-9c2d-8b0e1a7f5d34")

// Source describes the raw input to the evidence pipeline.
type Source struct {
	// Content is the raw container bytes.
	Content []byte
	// Kind is a hint ("word", "docx", "slides", "pptx"). When empty the
	// archive is sniffed.
	Kind string
	ID   string
}

// Marker is a structural signal found by pattern presence.
type Marker struct {
	Label   string `json:"label,omitempty"`
	Group   string `json:"group"`
	Present bool   `json:"present"`
}

// Milestones is the milestone section signal with its recovered dates.
type Milestones struct {
	Present bool `json:"present"`
	// Dates are normalized and de-duplicated, first occurrence first.
	Dates []string `json:"dates"`
	// Slides lists the slide numbers carrying milestones (slide decks only).
	Slides []int `json:"slides,omitempty"`
}

// Status is the first status value found scanning slides in order.
type Status struct {
	Found bool   `json:"found"`
	Value string `json:"value,omitempty"`
	Slide int    `json:"slide,omitempty"`
	// Anchored is true when the value came from a header-anchored pattern.
	Anchored bool `json:"anchored"`
}

// EmbeddedContainerInfo describes one embedded spreadsheet.
type EmbeddedContainerInfo struct {
	Path       string   `json:"path"`
	SheetNames []string `json:"sheet_names"`
	// RequiredSheets maps each required sheet name to whether it was found.
	RequiredSheets map[string]bool `json:"required_sheets,omitempty"`
	Architecture   bool            `json:"architecture"`
}

// RequiredFound counts required sheets present in the workbook.
func (e EmbeddedContainerInfo) RequiredFound() int {
	n := 0
	for _, ok := range e.RequiredSheets {
		if ok {
			n++
		}
	}
	return n
}

// ExtractedDocument is everything the checks may read about one document.
// It is built once by the pipeline and treated as read-only afterwards.
type ExtractedDocument struct {
	ID             string     `json:"id"`
	SourceID       string     `json:"source_id,omitempty"`
	Kind           ooxml.Kind `json:"kind"`
	CatalogVersion string     `json:"catalog_version"`
	// ScopedText holds the text window of every scope rules read from.
	ScopedText map[string]string `json:"scoped_text"`
	// Fields maps each extracted field to its value; nil means not found.
	Fields     map[string]*string      `json:"fields"`
	Markers    map[string]Marker       `json:"markers"`
	Milestones Milestones              `json:"milestones"`
	Status     Status                  `json:"status"`
	Embedded   []EmbeddedContainerInfo `json:"embedded"`
	SlideCount int                     `json:"slide_count"`
	// Warnings records every non-fatal degradation met while extracting.
	Warnings []string `json:"warnings,omitempty"`
}

// NewDocument returns an empty document for src.
func NewDocument(src Source, kind ooxml.Kind, catalogVersion string) *ExtractedDocument {
	return &ExtractedDocument{
		ID:             uuid.NewSHA1(documentNamespace, src.Content).String(),
		SourceID:       src.ID,
		Kind:           kind,
		CatalogVersion: catalogVersion,
		ScopedText:     map[string]string{},
		Fields:         map[string]*string{},
		Markers:        map[string]Marker{},
		Milestones:     Milestones{Dates: []string{}},
		Embedded:       []EmbeddedContainerInfo{},
	}
}

// Field returns the value of a field and whether it was found.
func (d *ExtractedDocument) Field(name string) (string, bool) {
	v := d.Fields[name]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Warn logs a non-fatal problem and keeps it on the document.
func (d *ExtractedDocument) Warn(logger *zap.Logger, part string, err error) {
	logger.Warn("degraded extraction", zap.String("part", part), zap.Error(err))
	d.Warnings = append(d.Warnings, part+": "+err.Error())
}

// Analyzer turns one container kind into an ExtractedDocument.
type Analyzer interface {
	CanHandle(source Source) bool
	Analyze(ctx context.Context, source Source) (*ExtractedDocument, error)
	Name() string
}

// ProjectPart flattens one part. A projection failure is recorded on doc
// and yields empty text.
func ProjectPart(doc *ExtractedDocument, part ooxml.Part, logger *zap.Logger) ooxml.Projection {
	p, err := ooxml.Project(part.Data)
	if err != nil {
		doc.Warn(logger, part.Path, err)
		return ooxml.Projection{}
	}
	return p
}
