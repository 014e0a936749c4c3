// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"go.uber.org/zap"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/evidence"
	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
)

// handles reports whether source is of the given kind, trusting the hint
// when one is set and sniffing the archive otherwise.
func handles(source evidence.Source, kind ooxml.Kind) bool {
	if source.Kind != "" {
		k, err := ooxml.ParseKind(source.Kind)
		return err == nil && k == kind
	}
	k, err := ooxml.Detect(source.Content)
	return err == nil && k == kind
}

// NewPipeline registers an analyzer for every supported kind, all driven by c.
func NewPipeline(c *catalog.Catalog, logger *zap.Logger) *evidence.Pipeline {
	return evidence.NewPipeline(NewWordAnalyzer(c, logger), NewSlidesAnalyzer(c, logger))
}
