// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gemaraproj/ooxml-compliance/internal/catalog"
	"github.com/gemaraproj/ooxml-compliance/internal/compliance"
	"github.com/gemaraproj/ooxml-compliance/internal/evidence"
	"github.com/gemaraproj/ooxml-compliance/internal/evidence/parsers"
	"github.com/gemaraproj/ooxml-compliance/internal/reference"
	"github.com/gemaraproj/ooxml-compliance/internal/tool"
)

var (
	kind           string
	catalogVersion string
	output         string
	workers        int
	refPath        string
	refSheet       string
	refFilter      map[string]string
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check a document against a reference record",
	Long: `Analyzes the document and runs every check of the rule catalog against the
reference. The reference is a YAML or JSON mapping of field to value(s), or an
xlsx sheet whose header row names the fields.

Example:
  doccheck check plan.docx --reference ref.yaml
  doccheck check deck.pptx --reference releases.xlsx --filter release=RLSE0031115`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the evidence extracted from a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the built-in rule catalogs, or print one with --version",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyze and check tools over MCP on stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	for _, cmd := range []*cobra.Command{checkCmd, extractCmd} {
		cmd.Flags().StringVar(&kind, "kind", "", "document kind (word, docx, slides, pptx); sniffed when empty")
		cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json, yaml)")
	}
	for _, cmd := range []*cobra.Command{checkCmd, extractCmd, serveCmd} {
		cmd.Flags().StringVar(&catalogVersion, "catalog", "", "built-in catalog version (default from config)")
	}
	checkCmd.Flags().IntVar(&workers, "workers", 0, "concurrent checks (default from config)")
	checkCmd.Flags().StringVar(&refPath, "reference", "", "reference file (.yaml, .json or .xlsx)")
	checkCmd.Flags().StringVar(&refSheet, "sheet", "", "reference workbook sheet (default: first sheet)")
	checkCmd.Flags().StringToStringVar(&refFilter, "filter", nil, "reference workbook row filter, field=value")
	_ = checkCmd.MarkFlagRequired("reference")

	catalogCmd.Flags().StringVar(&catalogVersion, "version", "", "catalog version to print")
}

func loadCatalog() (*catalog.Catalog, error) {
	if catalogVersion != "" {
		return catalog.Builtin(catalogVersion)
	}
	return cfg.LoadCatalog()
}

func analyzeFile(ctx context.Context, path string, c *catalog.Catalog) (*evidence.ExtractedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return parsers.NewPipeline(c, logger).Analyze(ctx, evidence.Source{
		Content: data,
		Kind:    kind,
		ID:      filepath.Base(path),
	})
}

func loadReference() (reference.Record, error) {
	if strings.EqualFold(filepath.Ext(refPath), ".xlsx") {
		return reference.LoadWorkbook(refPath, refSheet, reference.Filter(refFilter))
	}
	return reference.LoadFile(refPath)
}

func runCheck(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}
	ref, err := loadReference()
	if err != nil {
		return err
	}
	doc, err := analyzeFile(cmd.Context(), args[0], c)
	if err != nil {
		return err
	}

	n := cfg.Engine.Workers
	if workers > 0 {
		n = workers
	}
	engine := compliance.NewEngine(
		compliance.WithWorkers(n),
		compliance.WithLevels(compliance.LevelsFor(c)),
		compliance.WithLogger(logger),
	)
	rep, err := compliance.NewVerifier(c, engine).Verify(cmd.Context(), doc, ref)
	if err != nil {
		return err
	}
	logger.Info("document checked",
		zap.String("file", args[0]),
		zap.Float64("score", rep.OverallScore),
		zap.String("level", string(rep.ComplianceLevel)),
		zap.Int("passed", rep.PassedChecks),
		zap.Int("total", rep.TotalChecks))
	return write(cmd.OutOrStdout(), rep)
}

func runExtract(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}
	doc, err := analyzeFile(cmd.Context(), args[0], c)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), doc)
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	if catalogVersion == "" {
		for _, v := range catalog.Versions() {
			c, err := catalog.Builtin(v)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.Version, c.Description)
		}
		return nil
	}
	c, err := catalog.Builtin(catalogVersion)
	if err != nil {
		return err
	}
	output = "yaml"
	return write(cmd.OutOrStdout(), c)
}

func runServe(cmd *cobra.Command, _ []string) error {
	c, err := loadCatalog()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	server := mcp.NewServer(&mcp.Implementation{Name: "doccheck", Version: version}, nil)
	tool.NewHandler(c, cfg.Engine.Workers, logger).Register(server)

	logger.Info("serving MCP on stdio", zap.String("catalog", c.Version))
	return server.Run(ctx, &mcp.StdioTransport{})
}

func write(w io.Writer, v any) error {
	switch output {
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", output)
	}
}
