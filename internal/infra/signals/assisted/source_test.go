package assisted

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rentdoc/internal/domain/ai"
	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
)

type baseSource struct {
	sig documents.Signals
	err error
}

func (b baseSource) Inspect(context.Context, documents.Request) (documents.Signals, error) {
	return b.sig, b.err
}

type fakeClient struct {
	answer string
	err    error
	calls  int
	user   string
}

func (f *fakeClient) CompleteJSON(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.user = user
	return f.answer, f.err
}

var req = documents.Request{FileURL: "s3://docs/contrat.pdf", FileName: "contrat.pdf", DocumentType: "employment_contract"}

func TestInspectUpgradesSignals(t *testing.T) {
	base := baseSource{sig: documents.Signals{Source: "content", Text: "Contrat de travail ... lu et approuve"}}
	client := &fakeClient{answer: `{"readable":true,"signaturePresent":true,"pageCount":3,"detectedType":"employment_contract"}`}

	sig, err := NewSource(base, client).Inspect(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, Name, sig.Source)
	assert.True(t, sig.Readable)
	assert.True(t, sig.SignaturePresent)
	assert.Equal(t, 3, sig.PageCount)
	assert.Equal(t, base.sig.Text, sig.Text)
	assert.Contains(t, client.user, "Declared type: employment_contract")
}

func TestInspectNeverDowngrades(t *testing.T) {
	mrz := &documents.MRZ{Format: "TD3", Valid: true}
	base := baseSource{sig: documents.Signals{Readable: true, PageCount: 2, SignaturePresent: true, Text: "x", MRZ: mrz}}
	client := &fakeClient{answer: `{"readable":false,"signaturePresent":false,"pageCount":7,"detectedType":"payslip"}`}

	sig, err := NewSource(base, client).Inspect(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, sig.Readable)
	assert.True(t, sig.SignaturePresent)
	assert.Equal(t, 2, sig.PageCount)
	assert.Same(t, mrz, sig.MRZ)
}

func TestInspectSkipsModelWithoutText(t *testing.T) {
	client := &fakeClient{}

	sig, err := NewSource(baseSource{sig: documents.Signals{Source: "content", PageCount: 1}}, client).Inspect(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 0, client.calls)
	assert.Equal(t, "content", sig.Source)
}

func TestInspectErrors(t *testing.T) {
	boom := errors.New("store offline")
	_, err := NewSource(baseSource{err: boom}, &fakeClient{}).Inspect(context.Background(), req)
	assert.ErrorIs(t, err, boom)

	withText := baseSource{sig: documents.Signals{Text: "x"}}
	_, err = NewSource(withText, &fakeClient{err: ai.ErrQuotaExceeded}).Inspect(context.Background(), req)
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)

	_, err = NewSource(withText, &fakeClient{answer: "not json"}).Inspect(context.Background(), req)
	assert.ErrorContains(t, err, "decode ai review")
}
