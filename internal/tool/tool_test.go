// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/compliance"
	"github.com/gemaraproj/ooxml-compliance/internal/ooxml"
	"github.com/gemaraproj/ooxml-compliance/internal/ooxml/ooxmltest"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	c, err := catalog.Builtin("v2")
	require.NoError(t, err)
	return NewHandler(c, 2, zaptest.NewLogger(t))
}

func statusDeck(t *testing.T) []byte {
	t.Helper()
	return ooxmltest.NewPptx(
		ooxmltest.Slide("RLSE0031115 - PRJ00015", "Project Name: Atlas", "Application Name: Payments Hub", "Release: RLSE0031115"),
		ooxmltest.Slide("Scope"),
		ooxmltest.Slide("Overall Certification PT Status: PASS"),
	).Bytes(t)
}

func TestAnalyzeDocument(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	h := newHandler(t)

	tests := []struct {
		name           string
		input          InputAnalyzeDocument
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputAnalyzeDocument)
	}{
		{
			name:        "empty content returns error",
			input:       InputAnalyzeDocument{},
			wantErr:     true,
			errContains: "content is required",
		},
		{
			name:        "garbage content is a malformed container",
			input:       InputAnalyzeDocument{Content: []byte("not a zip")},
			wantErr:     true,
			errContains: ooxml.ErrMalformedContainer.Error(),
		},
		{
			name:        "unknown catalog version",
			input:       InputAnalyzeDocument{Content: statusDeck(t), CatalogVersion: "v9"},
			wantErr:     true,
			errContains: "unknown catalog version",
		},
		{
			name:  "slide deck is analyzed",
			input: InputAnalyzeDocument{Content: statusDeck(t), Kind: "pptx", SourceID: "deck.pptx"},
			validateOutput: func(t *testing.T, output OutputAnalyzeDocument) {
				assert.Equal(t, "slides", output.AnalyzerUsed)
				require.NotNil(t, output.Document)
				assert.Equal(t, "deck.pptx", output.Document.SourceID)
				assert.Equal(t, 3, output.Document.SlideCount)
				assert.Equal(t, "PASS", output.Document.Status.Value)
			},
		},
		{
			name:  "generic catalog on request",
			input: InputAnalyzeDocument{Content: statusDeck(t), CatalogVersion: "v1"},
			validateOutput: func(t *testing.T, output OutputAnalyzeDocument) {
				assert.Equal(t, "v1", output.Document.CatalogVersion)
				assert.Equal(t, "unknown", output.Document.SourceID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, output, err := h.AnalyzeDocument(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, result)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestCheckDocumentCompliance(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}
	h := newHandler(t)

	tests := []struct {
		name           string
		input          InputCheckDocumentCompliance
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputCheckDocumentCompliance)
	}{
		{
			name:        "missing reference",
			input:       InputCheckDocumentCompliance{Content: statusDeck(t)},
			wantErr:     true,
			errContains: "reference is required",
		},
		{
			name: "invalid reference value",
			input: InputCheckDocumentCompliance{
				Content:   statusDeck(t),
				Reference: map[string]any{"release": map[string]any{"id": "x"}},
			},
			wantErr:     true,
			errContains: "invalid reference",
		},
		{
			name: "matching deck",
			input: InputCheckDocumentCompliance{
				Content: statusDeck(t),
				Reference: map[string]any{
					"release":              "RLSE0031115",
					"clarity_project_id":   []any{"PRJ00015"},
					"project_name":         "Atlas",
					"business_application": "Payments Hub",
				},
			},
			validateOutput: func(t *testing.T, output OutputCheckDocumentCompliance) {
				rep := output.Report
				assert.Equal(t, "slides", output.AnalyzerUsed)
				assert.Equal(t, 4, rep.TotalChecks)

				for _, name := range []string{"first_slide", "dual_identifier", "status", "slide_count"} {
					r, ok := rep.Result(name)
					require.True(t, ok, name)
					assert.True(t, r.Passed, "%s: %v", name, r.Errors)
				}
				slides, _ := rep.Result("slide_count")
				assert.Equal(t, 0.6, slides.Score)

				// (1 + 1 + 1 + 0.6) / 4
				assert.InDelta(t, 0.9, rep.OverallScore, 1e-9)
				assert.Equal(t, compliance.FullyCompliant, rep.ComplianceLevel)
			},
		},
		{
			name: "mismatched release",
			input: InputCheckDocumentCompliance{
				Content:   statusDeck(t),
				Reference: map[string]any{"release": "RLSE0000001", "clarity_project_id": "PRJ00015"},
			},
			validateOutput: func(t *testing.T, output OutputCheckDocumentCompliance) {
				dual, ok := output.Report.Result("dual_identifier")
				require.True(t, ok)
				assert.False(t, dual.Passed)
				assert.Equal(t, 0.5, dual.Score)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := h.CheckDocumentCompliance(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	server := mcp.NewServer(&mcp.Implementation{Name: "doccheck-test", Version: "v0.0.0"}, nil)
	assert.NotPanics(t, func() { newHandler(t).Register(server) })
}
