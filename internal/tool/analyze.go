// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gemaraproj/ooxml-compliance/internal/evidence"
	"github.com/gemaraproj/ooxml-compliance/internal/evidence/parsers"
)

// MetadataAnalyzeDocument describes the analyze_document tool.
var MetadataAnalyzeDocument = &mcp.Tool{
	Name: "analyze_document",
	Description: "Extract the identifiers, structural markers, milestones, status and embedded " +
		"workbooks of a word-processing (.docx) or slide-deck (.pptx) document. " +
		"Fields the rule catalog cannot find are returned as null. " +
		"Non-fatal problems such as unreadable parts are listed under warnings.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content":         contentProperty,
			"kind":            kindProperty,
			"source_id":       sourceIDProperty,
			"catalog_version": catalogProperty,
		},
	},
}

// InputAnalyzeDocument is the input for the AnalyzeDocument tool.
type InputAnalyzeDocument struct {
	Content        []byte `json:"content"`
	Kind           string `json:"kind,omitempty"`
	SourceID       string `json:"source_id,omitempty"`
	CatalogVersion string `json:"catalog_version,omitempty"`
}

// OutputAnalyzeDocument is the output for the AnalyzeDocument tool.
type OutputAnalyzeDocument struct {
	Document *evidence.ExtractedDocument `json:"document"`
	// AnalyzerUsed is the name of the analyzer that was selected.
	AnalyzerUsed string `json:"analyzer_used"`
}

// AnalyzeDocument runs the evidence pipeline over the document.
func (h *Handler) AnalyzeDocument(ctx context.Context, _ *mcp.CallToolRequest, input InputAnalyzeDocument) (*mcp.CallToolResult, OutputAnalyzeDocument, error) {
	res, err := h.analyze(ctx, input.Content, input.Kind, input.SourceID, input.CatalogVersion)
	if err != nil {
		return nil, OutputAnalyzeDocument{}, err
	}
	return nil, OutputAnalyzeDocument{Document: res.Document, AnalyzerUsed: res.AnalyzerUsed}, nil
}

func (h *Handler) analyze(ctx context.Context, content []byte, kind, sourceID, version string) (evidence.RunResult, error) {
	if len(content) == 0 {
		return evidence.RunResult{}, fmt.Errorf("content is required")
	}
	c, err := h.catalogFor(version)
	if err != nil {
		return evidence.RunResult{}, err
	}
	if sourceID == "" {
		sourceID = "unknown"
	}
	return parsers.NewPipeline(c, h.logger).RunWithMeta(ctx, evidence.Source{
		Content: content,
		Kind:    kind,
		ID:      sourceID,
	})
}
