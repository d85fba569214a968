// Package content derives document signals from the stored bytes alone.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
	"github.com/bryanwahyu/rentdoc/internal/logger"
)

// Name is reported in Signals.Source.
const Name = "content"

// Opener is the read side of documents.FileStore.
type Opener interface {
	Open(ctx context.Context, tenant, fileURL string) (io.ReadCloser, error)
}

// Source is a deterministic documents.SignalSource: the same bytes always
// produce the same signals.
type Source struct {
	Files    Opener
	MaxBytes int64
}

func NewSource(files Opener, maxBytes int64) *Source {
	return &Source{Files: files, MaxBytes: maxBytes}
}

func (s *Source) Inspect(ctx context.Context, req documents.Request) (documents.Signals, error) {
	rc, err := s.Files.Open(ctx, req.TenantID, req.FileURL)
	if errors.Is(err, documents.ErrNotStored) {
		logger.Log.WithField("fileUrl", req.FileURL).Debug("document not in file store, scoring on file name only")
		return documents.Signals{Source: Name}, nil
	}
	if err != nil {
		return documents.Signals{}, fmt.Errorf("open %s: %w", req.FileURL, err)
	}
	defer rc.Close()

	r := io.Reader(rc)
	if s.MaxBytes > 0 {
		r = io.LimitReader(rc, s.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return documents.Signals{}, fmt.Errorf("read %s: %w", req.FileURL, err)
	}
	if s.MaxBytes > 0 && int64(len(data)) > s.MaxBytes {
		return documents.Signals{}, fmt.Errorf("%s exceeds %d bytes: %w", req.FileURL, s.MaxBytes, documents.ErrTooLarge)
	}

	sig := InspectBytes(data)
	logger.Log.WithFields(logrus.Fields{
		"fileUrl":  req.FileURL,
		"pages":    sig.PageCount,
		"readable": sig.Readable,
		"twoDDoc":  sig.TwoDDoc != nil,
		"mrz":      sig.MRZ != nil,
	}).Debug("document inspected")
	return sig, nil
}

var (
	magicJPEG = []byte{0xff, 0xd8, 0xff}
	magicPNG  = []byte("\x89PNG\r\n\x1a\n")
)

// InspectBytes derives signals from raw document bytes.
func InspectBytes(data []byte) documents.Signals {
	sig := documents.Signals{Source: Name}
	switch {
	case len(data) == 0:
		return sig
	case isPDF(data):
		info := inspectPDF(data)
		sig.PageCount = info.pages
		sig.SignaturePresent = info.signed
		sig.Text = info.text
		sig.Readable = info.pages > 0
	case bytes.HasPrefix(data, magicJPEG), bytes.HasPrefix(data, magicPNG):
		// images cannot be read without OCR, they are only counted
		sig.PageCount = 1
		sig.Readable = true
	case utf8.Valid(data):
		sig.PageCount = 1
		sig.Text = string(data)
		sig.Readable = len(bytes.TrimSpace(data)) > 0
	}

	// barcode payloads are often embedded verbatim outside text operators
	sig.TwoDDoc = find2DDoc(sig.Text)
	if sig.TwoDDoc == nil {
		sig.TwoDDoc = find2DDoc(string(data))
	}
	sig.MRZ = findMRZ(sig.Text)
	return sig
}
