// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"

	"go.uber.org/zap"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/evidence"
	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
)

// SlidesAnalyzer extracts slide decks. Slides are read in their numeric
// order; the first one is the first-slide scope.
type SlidesAnalyzer struct {
	catalog   *catalog.Catalog
	extractor *evidence.Extractor
	logger    *zap.Logger
}

// NewSlidesAnalyzer creates a SlidesAnalyzer driven by c.
func NewSlidesAnalyzer(c *catalog.Catalog, logger *zap.Logger) *SlidesAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlidesAnalyzer{
		catalog:   c,
		extractor: evidence.NewExtractor(c, ooxml.Slides),
		logger:    logger.Named("slides"),
	}
}

func (a *SlidesAnalyzer) Name() string {
	return "slides"
}

func (a *SlidesAnalyzer) CanHandle(source evidence.Source) bool {
	return handles(source, ooxml.Slides)
}

func (a *SlidesAnalyzer) Analyze(_ context.Context, source evidence.Source) (*evidence.ExtractedDocument, error) {
	c, err := ooxml.OpenContainer(source.Content, ooxml.Slides, a.logger)
	if err != nil {
		return nil, err
	}
	doc := evidence.NewDocument(source, ooxml.Slides, a.catalog.Version)
	for _, name := range c.Skipped {
		doc.Warnings = append(doc.Warnings, name+": "+ooxml.ErrUnrecognizedPart.Error())
	}

	corpus := evidence.Corpus{SlideNumbers: c.SlideNumbers()}
	for _, part := range c.Slides {
		p := evidence.ProjectPart(doc, part, a.logger)
		corpus.Slides = append(corpus.Slides, p.Text)
		corpus.Tables = append(corpus.Tables, p.Tables...)
	}
	doc.SlideCount = len(c.Slides)

	a.extractor.Extract(corpus, doc)
	evidence.InspectWorkbooks(c, a.catalog.Slides.Workbook, doc, a.logger)

	a.logger.Debug("analyzed deck",
		zap.String("id", doc.ID),
		zap.Ints("slides", corpus.SlideNumbers),
		zap.Int("embedded", len(doc.Embedded)))
	return doc, nil
}
