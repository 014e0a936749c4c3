// SPDX-License-Identifier: Apache-2.0

package compliance

import (
	"context"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/evidence"
	"github.com/gemaraproj/ooxml-compliance/internal/reference"
)

// Verifier runs a catalog's checks for whatever kind the document is.
type Verifier struct {
	catalog *catalog.Catalog
	engine  *Engine
}

// NewVerifier binds c to e. A nil engine gets the defaults, with the
// catalog's compliance threshold as the lower bound of Compliant.
func NewVerifier(c *catalog.Catalog, e *Engine) *Verifier {
	if e == nil {
		e = NewEngine(WithLevels(LevelsFor(c)))
	}
	return &Verifier{catalog: c, engine: e}
}

// LevelsFor returns the default bands with the catalog's compliance
// threshold.
func LevelsFor(c *catalog.Catalog) Levels {
	l := DefaultLevels
	if t := c.Thresholds.Compliance; t > 0 {
		l.Compliant = t
	}
	return l
}

// Verify checks doc against ref.
func (v *Verifier) Verify(ctx context.Context, doc *evidence.ExtractedDocument, ref reference.Record) (Report, error) {
	checks, err := ChecksFor(v.catalog, doc.Kind)
	if err != nil {
		return Report{}, err
	}
	return v.engine.Run(ctx, checks, doc, ref), nil
}
