// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"

	"go.uber.org/zap"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/evidence"
	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
)

// WordAnalyzer extracts word-processing documents. The main body supplies
// the first-page window and tables; the first footer carrying text supplies
// the footer scope.
type WordAnalyzer struct {
	catalog   *catalog.Catalog
	extractor *evidence.Extractor
	logger    *zap.Logger
}

// NewWordAnalyzer creates a WordAnalyzer driven by c.
func NewWordAnalyzer(c *catalog.Catalog, logger *zap.Logger) *WordAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WordAnalyzer{
		catalog:   c,
		extractor: evidence.NewExtractor(c, ooxml.Word),
		logger:    logger.Named("word"),
	}
}

func (a *WordAnalyzer) Name() string {
	return "word"
}

func (a *WordAnalyzer) CanHandle(source evidence.Source) bool {
	return handles(source, ooxml.Word)
}

func (a *WordAnalyzer) Analyze(_ context.Context, source evidence.Source) (*evidence.ExtractedDocument, error) {
	c, err := ooxml.OpenContainer(source.Content, ooxml.Word, a.logger)
	if err != nil {
		return nil, err
	}
	doc := evidence.NewDocument(source, ooxml.Word, a.catalog.Version)

	main := evidence.ProjectPart(doc, c.Main, a.logger)
	corpus := evidence.Corpus{Main: main.Text, Tables: main.Tables}
	for _, part := range c.Footers {
		if p := evidence.ProjectPart(doc, part, a.logger); p.Text != "" {
			corpus.Footer = p.Text
			break
		}
	}

	a.extractor.Extract(corpus, doc)
	evidence.InspectWorkbooks(c, a.catalog.Word.Workbook, doc, a.logger)

	a.logger.Debug("analyzed document",
		zap.String("id", doc.ID),
		zap.Int("tables", len(main.Tables)),
		zap.Int("footers", len(c.Footers)),
		zap.Int("embedded", len(doc.Embedded)))
	return doc, nil
}
