// Package assisted layers a language model review on top of another
// documents.SignalSource.
package assisted

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bryanwahyu/rentdoc/internal/domain/ai"
	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
	"github.com/bryanwahyu/rentdoc/internal/infra/ai/prompt"
	"github.com/bryanwahyu/rentdoc/internal/logger"
)

const Name = "openai"

// Source asks the model to confirm the facts Base could not establish. It can
// only upgrade Readable, SignaturePresent and PageCount. Decoded barcodes and
// text always come from Base.
type Source struct {
	Base   documents.SignalSource
	Client ai.Client
}

func NewSource(base documents.SignalSource, client ai.Client) *Source {
	return &Source{Base: base, Client: client}
}

func (s *Source) Inspect(ctx context.Context, req documents.Request) (documents.Signals, error) {
	sig, err := s.Base.Inspect(ctx, req)
	if err != nil {
		return sig, err
	}
	if sig.Text == "" {
		// nothing to show the model
		return sig, nil
	}

	raw, err := s.Client.CompleteJSON(ctx, prompt.SignalsSystemPrompt(),
		prompt.SignalsUserPrompt(req.FileName, req.DocumentType, sig.Text))
	if err != nil {
		return documents.Signals{}, fmt.Errorf("ai review: %w", err)
	}
	var ans prompt.SignalsAnswer
	if err := json.Unmarshal([]byte(raw), &ans); err != nil {
		return documents.Signals{}, fmt.Errorf("decode ai review: %w", err)
	}

	sig.Source = Name
	sig.Readable = sig.Readable || ans.Readable
	sig.SignaturePresent = sig.SignaturePresent || ans.SignaturePresent
	if sig.PageCount == 0 && ans.PageCount > 0 {
		sig.PageCount = ans.PageCount
	}
	if seen, ok := documents.ParseType(ans.DetectedType); ok {
		if declared, _ := documents.ParseType(req.DocumentType); declared != seen {
			logger.Log.WithField("fileUrl", req.FileURL).
				Warnf("declared type %q but model sees %q", req.DocumentType, ans.DetectedType)
		}
	}
	return sig, nil
}
