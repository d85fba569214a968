// Package mcptool exposes document analysis to MCP clients.
package mcptool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"

	appdocs "github.com/bryanwahyu/rentdoc/internal/application/documents"
	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
	"github.com/bryanwahyu/rentdoc/internal/domain/rent"
)

// MetadataAnalyzeDocument describes the analyze_document tool.
var MetadataAnalyzeDocument = &mcp.Tool{
	Name: "analyze_document",
	Description: "Score a supporting document of a rental application. " +
		"Supported types: tax_notice, payslip, identity, bank_statement, employment_contract " +
		"(French tags such as avis_imposition are accepted). " +
		"Returns a confidence score from 0 to 100 with validations, warnings, errors and " +
		"whether the document can skip manual review.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"fileUrl", "documentType"},
		"properties": map[string]interface{}{
			"fileUrl": map[string]interface{}{
				"type":        "string",
				"description": "URL of the stored document",
			},
			"fileName": map[string]interface{}{
				"type":        "string",
				"description": "Original file name. Dates in it are used to detect the period covered.",
			},
			"documentType": map[string]interface{}{
				"type":        "string",
				"description": "Declared document type",
			},
			"tenant": map[string]interface{}{
				"type":        "string",
				"description": "Tenant the analysis is recorded under. Defaults to mcp.",
			},
		},
	},
}

// InputAnalyzeDocument is the input for the AnalyzeDocument tool.
type InputAnalyzeDocument struct {
	FileURL      string `json:"fileUrl"`
	FileName     string `json:"fileName"`
	DocumentType string `json:"documentType"`
	Tenant       string `json:"tenant"`
}

// OutputAnalyzeDocument is the output for the AnalyzeDocument tool.
type OutputAnalyzeDocument struct {
	AnalysisID string                    `json:"analysisId,omitempty"`
	Analysis   *documents.AnalysisResult `json:"analysis"`
}

// MetadataReviseRent describes the revise_rent tool.
var MetadataReviseRent = &mcp.Tool{
	Name:        "revise_rent",
	Description: "Apply the yearly IRL revision to a rent: rent * newIndex / oldIndex, rounded to cents.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"currentRent", "oldIndex", "newIndex"},
		"properties": map[string]interface{}{
			"currentRent": map[string]interface{}{"type": "string", "description": "Current monthly rent, e.g. \"850.00\""},
			"oldIndex":    map[string]interface{}{"type": "string", "description": "IRL of the reference quarter at signature or last revision"},
			"newIndex":    map[string]interface{}{"type": "string", "description": "IRL of the same quarter one year later"},
		},
	},
}

type InputReviseRent struct {
	CurrentRent string `json:"currentRent"`
	OldIndex    string `json:"oldIndex"`
	NewIndex    string `json:"newIndex"`
}

// Tools binds the MCP handlers to the document service.
type Tools struct {
	Docs *appdocs.Service
}

// AnalyzeDocument scores the document through the same path as the HTTP API.
// The output is typed any so no schema is inferred from the free-form
// extractedData map.
func (t *Tools) AnalyzeDocument(ctx context.Context, _ *mcp.CallToolRequest, input InputAnalyzeDocument) (*mcp.CallToolResult, any, error) {
	tenant := input.Tenant
	if tenant == "" {
		tenant = "mcp"
	}
	res, err := t.Docs.Analyze(ctx, appdocs.AnalyzeCommand{
		TenantID:     tenant,
		FileURL:      input.FileURL,
		FileName:     input.FileName,
		DocumentType: input.DocumentType,
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, OutputAnalyzeDocument{AnalysisID: res.ID, Analysis: res.Analysis}, nil
}

// ReviseRent applies an IRL revision.
func (t *Tools) ReviseRent(_ context.Context, _ *mcp.CallToolRequest, input InputReviseRent) (*mcp.CallToolResult, any, error) {
	var vals [3]decimal.Decimal
	for i, s := range []string{input.CurrentRent, input.OldIndex, input.NewIndex} {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %q is not a number", rent.ErrInvalidInput, s)
		}
		vals[i] = d
	}
	rev, err := rent.ReviseRent(vals[0], vals[1], vals[2])
	if err != nil {
		return nil, nil, err
	}
	return nil, rev, nil
}

// NewServer registers every tool on a fresh MCP server.
func NewServer(t *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "rentdoc", Version: version}, nil)
	mcp.AddTool(server, MetadataAnalyzeDocument, t.AnalyzeDocument)
	mcp.AddTool(server, MetadataReviseRent, t.ReviseRent)
	return server
}

// ServeStdio runs the server over stdin/stdout until ctx is done.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
