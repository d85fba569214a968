package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	fileURL, err := store.Put(ctx, "acme/payslip/abc-bulletin.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fileURL, "file://"))

	rc, err := store.Open(ctx, "acme", fileURL)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	assert.NoError(t, store.Ping(ctx))
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../outside.pdf", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, documents.ErrInvalidRequest)
}

func TestLocalStoreOpenForeignURLs(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	for _, u := range []string{
		"https://minio.local/docs/a.pdf",
		"file:///etc/passwd",
		"file://" + store.Dir + "/missing.pdf",
		"file://" + store.Dir + "/../escape.pdf",
	} {
		rc, err := store.Open(ctx, "", u)
		assert.ErrorIs(t, err, documents.ErrNotStored, u)
		assert.Nil(t, rc, u)
	}
}

func TestLocalStoreOpenIsTenantScoped(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	fileURL, err := store.Put(ctx, "acme/bank_statement/abc-releve.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf")
	require.NoError(t, err)

	rc, err := store.Open(ctx, "globex", fileURL)
	assert.ErrorIs(t, err, documents.ErrNotStored)
	assert.Nil(t, rc)

	// a tenant whose name prefixes another's must not match
	rc, err = store.Open(ctx, "acm", fileURL)
	assert.ErrorIs(t, err, documents.ErrNotStored)
	assert.Nil(t, rc)

	rc, err = store.Open(ctx, "acme", fileURL)
	require.NoError(t, err)
	rc.Close()

	rc, err = store.Open(ctx, "", fileURL)
	require.NoError(t, err)
	rc.Close()
}

func TestOwnedBy(t *testing.T) {
	assert.True(t, ownedBy("acme/payslip/x.pdf", "acme"))
	assert.True(t, ownedBy("acme/payslip/x.pdf", ""))
	assert.False(t, ownedBy("acme/payslip/x.pdf", "globex"))
	assert.False(t, ownedBy("acmecorp/payslip/x.pdf", "acme"))
}
