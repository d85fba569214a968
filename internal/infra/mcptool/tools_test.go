package mcptool

import (
	"context"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdocs "github.com/bryanwahyu/rentdoc/internal/application/documents"
	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
	"github.com/bryanwahyu/rentdoc/internal/domain/rent"
)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC) }

type nameOnly struct{}

func (nameOnly) Inspect(context.Context, documents.Request) (documents.Signals, error) {
	return documents.Signals{Source: "content"}, nil
}

func newTools() *Tools {
	return &Tools{Docs: &appdocs.Service{
		Analyzer: &documents.Analyzer{Signals: nameOnly{}, Clock: fixedClock{}},
	}}
}

func TestAnalyzeDocument(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name        string
		input       InputAnalyzeDocument
		wantErr     bool
		errContains string
		wantScore   int
	}{
		{
			name:        "missing url",
			input:       InputAnalyzeDocument{DocumentType: "payslip"},
			wantErr:     true,
			errContains: "fileUrl is required",
		},
		{
			name:      "stale tax notice",
			input:     InputAnalyzeDocument{FileURL: "https://cdn.example.com/avis_2023.pdf", DocumentType: "avis_imposition"},
			wantScore: 0,
		},
		{
			name:      "current tax notice from name only",
			input:     InputAnalyzeDocument{FileURL: "https://cdn.example.com/x.pdf", FileName: "avis_2025.pdf", DocumentType: "tax_notice"},
			wantScore: 30,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := newTools().AnalyzeDocument(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			res, ok := out.(OutputAnalyzeDocument)
			require.True(t, ok)
			assert.Equal(t, documents.TypeTaxNotice, res.Analysis.DocumentType)
			assert.Equal(t, tt.wantScore, res.Analysis.ConfidenceScore)
		})
	}
}

func TestReviseRentTool(t *testing.T) {
	_, out, err := newTools().ReviseRent(context.Background(), &mcp.CallToolRequest{}, InputReviseRent{
		CurrentRent: "850",
		OldIndex:    "142.06",
		NewIndex:    "145.47",
	})
	require.NoError(t, err)
	rev := out.(rent.RentRevision)
	assert.Equal(t, "870.40", rev.NewRent.StringFixed(2))

	_, _, err = newTools().ReviseRent(context.Background(), &mcp.CallToolRequest{}, InputReviseRent{CurrentRent: "huit cents", OldIndex: "1", NewIndex: "1"})
	assert.ErrorIs(t, err, rent.ErrInvalidInput)
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(newTools(), "test"))
}
