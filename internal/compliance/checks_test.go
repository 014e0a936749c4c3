// SPDX-License-Identifier: Apache-2.0

package compliance_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/compliance"
	"github.com/gemaraproj/ooxml-compliance/internal/evidence"
	"github.com/gemaraproj/ooxml-compliance/internal/evidence/parsers"
	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
	"github.com/gemaraproj/ooxml-compliance/internal/ooxml/ooxmltest"
	"github.com/gemaraproj/ooxml-compliance/internal/reference"
)

func strict(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Builtin("v2")
	require.NoError(t, err)
	return c
}

// runCheck runs the named catalog check for kind against doc and ref.
func runCheck(t *testing.T, c *catalog.Catalog, kind ooxml.Kind, name string, doc *evidence.ExtractedDocument, ref reference.Record) compliance.CheckResult {
	t.Helper()
	checks, err := compliance.ChecksFor(c, kind)
	require.NoError(t, err)
	for _, chk := range checks {
		if chk.Name == name {
			return compliance.NewEngine().Execute(context.Background(), []compliance.Check{chk}, doc, ref)[0]
		}
	}
	t.Fatalf("no check %q for %s", name, kind)
	return compliance.CheckResult{}
}

func docWith(kind ooxml.Kind, fields map[string]string) *evidence.ExtractedDocument {
	doc := evidence.NewDocument(evidence.Source{Content: []byte("fixture")}, kind, "v2")
	for k, v := range fields {
		doc.Fields[k] = &v
	}
	return doc
}

// ---------------------------------------------------------------------------
// ChecksFor
// ---------------------------------------------------------------------------

func TestChecksFor(t *testing.T) {
	c := strict(t)

	word, err := compliance.ChecksFor(c, ooxml.Word)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_page", "footer", "table_of_contents", "embedded_workbook", "milestones", "implementation_date"}, checkNames(word))

	slides, err := compliance.ChecksFor(c, ooxml.Slides)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_slide", "dual_identifier", "status", "slide_count"}, checkNames(slides))
}

func checkNames(checks []compliance.Check) []string {
	out := make([]string, len(checks))
	for i, c := range checks {
		out[i] = c.Name
	}
	return out
}

// ---------------------------------------------------------------------------
// Field checks
// ---------------------------------------------------------------------------

func TestFieldsCheck(t *testing.T) {
	c := strict(t)
	ref := reference.Record{
		"business_application": {"Payments Hub"},
		"business_app_id":      {"12345678"},
		"clarity_project_id":   {"PRJ00015"},
		"project_name":         {"Atlas Platform"},
	}

	t.Run("one field missing of four", func(t *testing.T) {
		doc := docWith(ooxml.Word, map[string]string{
			"application_name": "Payments Hub",
			"application_id":   "12345678",
			"project_id":       "PRJ00015",
		})
		res := runCheck(t, c, ooxml.Word, "first_page", doc, ref)

		assert.False(t, res.Passed)
		assert.InDelta(t, 0.75, res.Score, 1e-12)
		assert.Equal(t, []string{"project_name not found in document"}, res.Errors)
		assert.Equal(t, []string{"release", "enterprise_release_id"}, res.Details["unavailable_reference"])
	})

	t.Run("all match", func(t *testing.T) {
		doc := docWith(ooxml.Word, map[string]string{
			"application_name": "payments-hub",
			"application_id":   "12345678",
			"project_id":       "prj00015",
			"project_name":     "Atlas  Platform",
		})
		res := runCheck(t, c, ooxml.Word, "first_page", doc, ref)
		assert.True(t, res.Passed)
		assert.Equal(t, 1.0, res.Score)
		assert.Empty(t, res.Errors)
	})

	t.Run("identifier with wrong format scores zero", func(t *testing.T) {
		doc := docWith(ooxml.Word, map[string]string{
			"application_name": "Payments Hub",
			"application_id":   "1234567",
			"project_id":       "PRJ00015",
			"project_name":     "Atlas Platform",
		})
		res := runCheck(t, c, ooxml.Word, "first_page", doc, ref)
		assert.False(t, res.Passed)
		assert.InDelta(t, 0.75, res.Score, 1e-12)
		detail := res.Details["application_id"].(map[string]any)
		assert.Equal(t, false, detail["matched"])
		assert.Equal(t, 0.0, detail["score"])
	})

	t.Run("no reference values", func(t *testing.T) {
		doc := docWith(ooxml.Word, map[string]string{"application_name": "Payments Hub"})
		res := runCheck(t, c, ooxml.Word, "first_page", doc, reference.Record{})
		assert.False(t, res.Passed)
		assert.Zero(t, res.Score)
		assert.Equal(t, []string{"no reference values available"}, res.Errors)
	})

	t.Run("footer", func(t *testing.T) {
		doc := docWith(ooxml.Word, map[string]string{"footer_project_name": "Atlas Platform"})
		res := runCheck(t, c, ooxml.Word, "footer", doc, ref)
		assert.True(t, res.Passed)
		assert.Equal(t, 1.0, res.Score)
	})
}

// ---------------------------------------------------------------------------
// Structural checks
// ---------------------------------------------------------------------------

func TestMarkersCheck(t *testing.T) {
	c := strict(t)
	tests := []struct {
		name       string
		present    []string
		wantScore  float64
		wantPassed bool
	}{
		{name: "all sections", present: []string{"toc_header", "non_functional_requirement", "in_scope", "out_of_scope", "test_execution", "milestones"}, wantScore: 1, wantPassed: true},
		{name: "three of five", present: []string{"in_scope", "out_of_scope", "milestones"}, wantScore: 0.6, wantPassed: true},
		{name: "two of five", present: []string{"toc_header", "in_scope", "milestones"}, wantScore: 0.4, wantPassed: false},
		{name: "none", wantScore: 0, wantPassed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docWith(ooxml.Word, nil)
			for _, id := range tt.present {
				doc.Markers[id] = evidence.Marker{Present: true}
			}
			res := runCheck(t, c, ooxml.Word, "table_of_contents", doc, nil)
			assert.InDelta(t, tt.wantScore, res.Score, 1e-12)
			assert.Equal(t, tt.wantPassed, res.Passed)
			assert.Equal(t, 5, res.Details["required"])
		})
	}
}

func TestWorkbookCheck(t *testing.T) {
	c := strict(t)
	full := map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true, "F": true}
	half := map[string]bool{"A": true, "B": true, "C": true, "D": false, "E": false, "F": false}

	tests := []struct {
		name       string
		embedded   []evidence.EmbeddedContainerInfo
		wantScore  float64
		wantPassed bool
	}{
		{name: "none", wantScore: 0, wantPassed: false},
		{name: "complete", embedded: []evidence.EmbeddedContainerInfo{{Path: "a.xlsx", RequiredSheets: full, Architecture: true}}, wantScore: 1, wantPassed: true},
		{name: "sheets without architecture", embedded: []evidence.EmbeddedContainerInfo{{Path: "a.xlsx", RequiredSheets: full}}, wantScore: 0.8, wantPassed: true},
		{name: "half", embedded: []evidence.EmbeddedContainerInfo{{Path: "a.xlsx", RequiredSheets: half}}, wantScore: 0.4, wantPassed: false},
		{
			name: "best of several",
			embedded: []evidence.EmbeddedContainerInfo{
				{Path: "a.xlsx", RequiredSheets: half},
				{Path: "b.xlsx", RequiredSheets: half, Architecture: true},
			},
			wantScore:  0.6,
			wantPassed: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docWith(ooxml.Word, nil)
			doc.Embedded = append(doc.Embedded, tt.embedded...)
			res := runCheck(t, c, ooxml.Word, "embedded_workbook", doc, nil)
			assert.InDelta(t, tt.wantScore, res.Score, 1e-9)
			assert.Equal(t, tt.wantPassed, res.Passed)
		})
	}
}

func TestMilestonesCheck(t *testing.T) {
	c := strict(t)
	tests := []struct {
		name       string
		milestones evidence.Milestones
		wantScore  float64
		wantPassed bool
	}{
		{name: "absent", milestones: evidence.Milestones{Dates: []string{}}, wantScore: 0, wantPassed: false},
		{name: "present without dates", milestones: evidence.Milestones{Present: true, Dates: []string{}}, wantScore: 0.6, wantPassed: true},
		{name: "present with dates", milestones: evidence.Milestones{Present: true, Dates: []string{"8/11/2025"}}, wantScore: 1, wantPassed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docWith(ooxml.Word, nil)
			doc.Milestones = tt.milestones
			res := runCheck(t, c, ooxml.Word, "milestones", doc, nil)
			assert.InDelta(t, tt.wantScore, res.Score, 1e-12)
			assert.Equal(t, tt.wantPassed, res.Passed)
		})
	}
}

func TestDateMatchCheck(t *testing.T) {
	c := strict(t)
	doc := docWith(ooxml.Word, nil)
	doc.Milestones = evidence.Milestones{Present: true, Dates: []string{"9/1/2025", "8/11/2025"}}

	tests := []struct {
		name       string
		ref        reference.Record
		wantPassed bool
		wantErrors []string
	}{
		{name: "leading zeros ignored", ref: reference.Record{"install_start_date": {"08/11/2025"}}, wantPassed: true},
		{name: "different date", ref: reference.Record{"install_start_date": {"8/12/2025"}}, wantPassed: false},
		{name: "no reference date", ref: reference.Record{}, wantPassed: false, wantErrors: []string{"reference install_start_date not available"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCheck(t, c, ooxml.Word, "implementation_date", doc, tt.ref)
			assert.Equal(t, tt.wantPassed, res.Passed)
			assert.Equal(t, tt.wantErrors, res.Errors)
			if tt.wantPassed {
				assert.Equal(t, 1.0, res.Score)
			} else {
				assert.Zero(t, res.Score)
			}
		})
	}
}

func TestDualIdentifierCheck(t *testing.T) {
	c := strict(t)
	ref := reference.Record{"release": {"RLSE0031115"}, "clarity_project_id": {"PRJ00015"}}

	tests := []struct {
		name       string
		fields     map[string]string
		wantScore  float64
		wantPassed bool
	}{
		{name: "both match", fields: map[string]string{"dual_release": "RLSE0031115", "dual_project": "PRJ00015"}, wantScore: 1, wantPassed: true},
		{name: "project differs", fields: map[string]string{"dual_release": "RLSE0031115", "dual_project": "PRJ00016"}, wantScore: 0.5, wantPassed: false},
		{name: "not found", fields: nil, wantScore: 0, wantPassed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docWith(ooxml.Slides, tt.fields)
			res := runCheck(t, c, ooxml.Slides, "dual_identifier", doc, ref)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantPassed, res.Passed)
		})
	}
}

func TestStatusCheck(t *testing.T) {
	c := strict(t)
	tests := []struct {
		name       string
		status     evidence.Status
		wantScore  float64
		wantPassed bool
	}{
		{name: "anchored", status: evidence.Status{Found: true, Value: "PASS", Slide: 4, Anchored: true}, wantScore: 1, wantPassed: true},
		{name: "unanchored", status: evidence.Status{Found: true, Value: "FAIL", Slide: 2}, wantScore: 0.7, wantPassed: true},
		{name: "missing", wantScore: 0, wantPassed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docWith(ooxml.Slides, nil)
			doc.Status = tt.status
			res := runCheck(t, c, ooxml.Slides, "status", doc, nil)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantPassed, res.Passed)
		})
	}
}

func TestSlideCountCheck(t *testing.T) {
	c := strict(t)
	tests := []struct {
		slides     int
		wantScore  float64
		wantPassed bool
	}{
		{slides: 12, wantScore: 1, wantPassed: true},
		{slides: 10, wantScore: 1, wantPassed: true},
		{slides: 7, wantScore: 0.8, wantPassed: true},
		{slides: 5, wantScore: 0.8, wantPassed: true},
		{slides: 3, wantScore: 0.6, wantPassed: true},
		{slides: 2, wantScore: 0.3, wantPassed: false},
		{slides: 0, wantScore: 0.3, wantPassed: false},
	}
	for _, tt := range tests {
		doc := docWith(ooxml.Slides, nil)
		doc.SlideCount = tt.slides
		res := runCheck(t, c, ooxml.Slides, "slide_count", doc, nil)
		assert.Equal(t, tt.wantScore, res.Score, "slides %d", tt.slides)
		assert.Equal(t, tt.wantPassed, res.Passed, "slides %d", tt.slides)
		if !tt.wantPassed {
			assert.Equal(t, "add slides: at least 3 expected", res.Details["recommendation"])
		}
	}
}

// ---------------------------------------------------------------------------
// Verifier
// ---------------------------------------------------------------------------

func TestVerifier_CompliantTestPlan(t *testing.T) {
	c := strict(t)
	body := ooxmltest.WordDocument(
		ooxmltest.Paragraph("Application Name: Payments Hub"),
		ooxmltest.Paragraph("Application ID: 12345678"),
		ooxmltest.Paragraph("Project Name: Atlas Platform"),
		ooxmltest.Paragraph("Project ID: PRJ00015"),
		ooxmltest.Paragraph("Enterprise Release ID: RLSE0031115"),
		ooxmltest.Paragraph("Release: 2025.M08"),
		ooxmltest.Paragraph("Implementation Date: 08/11/2025"),
		ooxmltest.Paragraph("Table of Contents"),
		ooxmltest.Paragraph("3.3 Non Functional Requirement"),
		ooxmltest.Paragraph("3.4 In Scope"),
		ooxmltest.Paragraph("3.5 Out of Scope"),
		ooxmltest.Paragraph("4.1 Test Execution"),
		ooxmltest.Paragraph("12. Milestones"),
	)
	data := ooxmltest.NewDocx(body).
		AddString("word/footer1.xml", ooxmltest.WordFooter("Project Name: Atlas Platform")).
		Add("word/embeddings/sheet.xlsx", ooxmltest.Workbook(t,
			"Cover Page", "General Details", "Business Scenario(s)", "Data Requirement", "Architecture", "Logs&Contacts")).
		Bytes(t)

	doc, err := evidence.NewPipeline(parsers.NewWordAnalyzer(c, nil)).Analyze(context.Background(), evidence.Source{Content: data})
	require.NoError(t, err)

	ref := reference.Record{
		"business_application":  {"Payments Hub"},
		"business_app_id":       {"12345678"},
		"clarity_project_id":    {"PRJ00015"},
		"project_name":          {"Atlas Platform"},
		"release":               {"RLSE0031115"},
		"enterprise_release_id": {"2025.M08"},
		"install_start_date":    {"8/11/2025"},
	}
	rep, err := compliance.NewVerifier(c, nil).Verify(context.Background(), doc, ref)
	require.NoError(t, err)

	for _, r := range rep.Results {
		assert.True(t, r.Passed, "%s: %v", r.Name, r.Errors)
	}
	assert.Equal(t, 6, rep.TotalChecks)
	assert.Equal(t, 6, rep.PassedChecks)
	assert.InDelta(t, 1.0, rep.OverallScore, 1e-9)
	assert.Equal(t, compliance.FullyCompliant, rep.ComplianceLevel)
	assert.Equal(t, doc.ID, rep.DocumentID)
	assert.Equal(t, "v2", rep.CatalogVersion)
}

func TestLevelsFor(t *testing.T) {
	c := strict(t)
	assert.Equal(t, compliance.DefaultLevels, compliance.LevelsFor(c))

	c.Thresholds.Compliance = 0.7
	assert.Equal(t, 0.7, compliance.LevelsFor(c).Compliant)
}
