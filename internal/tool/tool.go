// SPDX-License-Identifier: Apache-2.0

// Package tool exposes document analysis and compliance checking as MCP
// tools.
package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/compliance"
)

// Handler serves the tools. Requests without a catalog version use the
// default catalog.
type Handler struct {
	catalog *catalog.Catalog
	workers int
	logger  *zap.Logger
}

// NewHandler creates a Handler around the default catalog c.
func NewHandler(c *catalog.Catalog, workers int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = compliance.DefaultWorkers
	}
	return &Handler{catalog: c, workers: workers, logger: logger.Named("tool")}
}

// Register adds every tool to server.
func (h *Handler) Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataAnalyzeDocument, h.AnalyzeDocument)
	mcp.AddTool(server, MetadataCheckDocumentCompliance, h.CheckDocumentCompliance)
}

func (h *Handler) catalogFor(version string) (*catalog.Catalog, error) {
	if version == "" || version == h.catalog.Version {
		return h.catalog, nil
	}
	return catalog.Builtin(version)
}

// Shared input schema properties.
var (
	contentProperty = map[string]interface{}{
		"type":        "string",
		"description": "Base64-encoded bytes of the .docx or .pptx file",
	}
	kindProperty = map[string]interface{}{
		"type":        "string",
		"description": "Kind hint. One of: word, docx, slides, pptx. If omitted, the archive is sniffed.",
		"enum":        []string{"word", "docx", "slides", "pptx"},
	}
	sourceIDProperty = map[string]interface{}{
		"type":        "string",
		"description": "Optional identifier for the document (file name, URL, etc.) echoed in the result.",
	}
	catalogProperty = map[string]interface{}{
		"type":        "string",
		"description": "Rule catalog version. v1 is the generic rule set, v2 the strict one. Defaults to the server's catalog.",
	}
)
