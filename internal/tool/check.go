// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/compliance"
	"github.com/gemaraproj/ooxml-compliance/internal/reference"
)

// MetadataCheckDocumentCompliance describes the check_document_compliance tool.
var MetadataCheckDocumentCompliance = &mcp.Tool{
	Name: "check_document_compliance",
	Description: "Verify a .docx or .pptx document against an authoritative reference record. " +
		"The reference maps field names (release, business_application, business_app_id, " +
		"clarity_project_id, project_name, enterprise_release_id, install_start_date, ...) to a " +
		"value or a list of accepted values. Every check of the rule catalog runs independently; " +
		"the report carries each check's score and the unweighted overall score with its " +
		"compliance level (Fully Compliant >= 0.9, Compliant >= 0.6, Partially Compliant >= 0.4).",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content", "reference"},
		"properties": map[string]interface{}{
			"content":         contentProperty,
			"kind":            kindProperty,
			"source_id":       sourceIDProperty,
			"catalog_version": catalogProperty,
			"reference": map[string]interface{}{
				"type":        "object",
				"description": "Reference record: field name to a string or a list of strings.",
			},
		},
	},
}

// InputCheckDocumentCompliance is the input for the CheckDocumentCompliance tool.
type InputCheckDocumentCompliance struct {
	Content        []byte         `json:"content"`
	Kind           string         `json:"kind,omitempty"`
	SourceID       string         `json:"source_id,omitempty"`
	CatalogVersion string         `json:"catalog_version,omitempty"`
	Reference      map[string]any `json:"reference"`
}

// OutputCheckDocumentCompliance is the output for the CheckDocumentCompliance tool.
type OutputCheckDocumentCompliance struct {
	Report       compliance.Report `json:"report"`
	AnalyzerUsed string            `json:"analyzer_used"`
}

// CheckDocumentCompliance analyzes the document and runs the catalog's
// checks against the reference.
func (h *Handler) CheckDocumentCompliance(ctx context.Context, _ *mcp.CallToolRequest, input InputCheckDocumentCompliance) (*mcp.CallToolResult, OutputCheckDocumentCompliance, error) {
	if input.Reference == nil {
		return nil, OutputCheckDocumentCompliance{}, fmt.Errorf("reference is required")
	}
	ref, err := reference.FromMap(input.Reference)
	if err != nil {
		return nil, OutputCheckDocumentCompliance{}, fmt.Errorf("invalid reference: %w", err)
	}

	res, err := h.analyze(ctx, input.Content, input.Kind, input.SourceID, input.CatalogVersion)
	if err != nil {
		return nil, OutputCheckDocumentCompliance{}, err
	}
	c, err := h.catalogFor(input.CatalogVersion)
	if err != nil {
		return nil, OutputCheckDocumentCompliance{}, err
	}

	rep, err := compliance.NewVerifier(c, h.engine(c)).Verify(ctx, res.Document, ref)
	if err != nil {
		return nil, OutputCheckDocumentCompliance{}, err
	}
	h.logger.Info("checked document",
		zap.String("source", input.SourceID),
		zap.Float64("score", rep.OverallScore),
		zap.String("level", string(rep.ComplianceLevel)))
	return nil, OutputCheckDocumentCompliance{Report: rep, AnalyzerUsed: res.AnalyzerUsed}, nil
}

func (h *Handler) engine(c *catalog.Catalog) *compliance.Engine {
	return compliance.NewEngine(
		compliance.WithWorkers(h.workers),
		compliance.WithLevels(compliance.LevelsFor(c)),
		compliance.WithLogger(h.logger),
	)
}
