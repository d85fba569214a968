package content

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/rentdoc/internal/domain/documents"
)

const plainPDF = `%PDF-1.4
1 0 obj << /Type /Catalog /Pages 2 0 R >> endobj
2 0 obj << /Type /Pages /Kids [3 0 R 4 0 R] /Count 2 >> endobj
3 0 obj << /Type /Page /Parent 2 0 R /Contents 5 0 R >> endobj
4 0 obj << /Type /Page /Parent 2 0 R >> endobj
5 0 obj << /Length 86 >>
stream
BT /F1 12 Tf (Bulletin de paie) Tj [(Net ) -20 (a payer)] TJ (Total \(brut\)) Tj ET
endstream
endobj
%%EOF
`

// zlib deflate of two Tj operators: "Avis d'impot 2025" and
// "Revenu fiscal de reference : 38 500".
const deflatedContent = "789c730a51d0773354303454084953d0702ccb2c564851cfcc2dc82f5130323032d55408c952d0084a2d4bcd2b5548cb2c4e4ecc51484955284a4d4b2d4acd4b4e55b05230b650303530002b740d010080d216b9"

func compressedPDF(t *testing.T) []byte {
	t.Helper()
	body, err := hex.DecodeString(deflatedContent)
	require.NoError(t, err)

	var b bytes.Buffer
	b.WriteString("%PDF-1.5\n3 0 obj << /Type /Page /Contents 5 0 R >> endobj\n")
	b.WriteString("5 0 obj << /Filter /FlateDecode >>\nstream\n")
	b.Write(body)
	b.WriteString("\nendstream\nendobj\n%%EOF\n")
	return b.Bytes()
}

// buildPDF assembles a PDF with a valid xref table and one content stream
// per page.
func buildPDF(pages ...string) []byte {
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
	}
	for i, content := range pages {
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents %d 0 R >>", 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return b.Bytes()
}

func TestInspectBytesHexEncodedText(t *testing.T) {
	// "Net a payer 1200,00" and "SIRET 732 829 320 00074"
	doc := buildPDF(
		"BT /F1 12 Tf <4E6574206120706179657220313230302C3030> Tj ET",
		"BT /F1 10 Tf [<5349524554> 120 < 20373332203832392033323020303030373 4>] TJ ET",
	)

	sig := InspectBytes(doc)

	assert.Equal(t, 2, sig.PageCount)
	assert.True(t, sig.Readable)
	assert.Contains(t, sig.Text, "Net a payer 1200,00")
	assert.Contains(t, sig.Text, "SIRET 732 829 320 00074")
	assert.False(t, sig.SignaturePresent)
}

func TestInspectBytesHexTextWithoutXref(t *testing.T) {
	raw := "%PDF-1.4\n3 0 obj << /Type /Page /Contents 5 0 R >> endobj\n" +
		"5 0 obj << /Length 49 >>\nstream\nBT <4E6574206120706179657220313230302C3030> Tj ET\nendstream\nendobj\n%%EOF\n"

	sig := InspectBytes([]byte(raw))

	assert.Equal(t, 1, sig.PageCount)
	assert.Equal(t, "Net a payer 1200,00", sig.Text)
}

func TestInspectBytesPlainPDF(t *testing.T) {
	sig := InspectBytes([]byte(plainPDF))

	assert.Equal(t, Name, sig.Source)
	assert.Equal(t, 2, sig.PageCount)
	assert.True(t, sig.Readable)
	assert.False(t, sig.SignaturePresent)
	assert.Equal(t, "Bulletin de paie\nNet a payer\nTotal (brut)", sig.Text)
	assert.Nil(t, sig.TwoDDoc)
	assert.Nil(t, sig.MRZ)
}

func TestInspectBytesCompressedPDF(t *testing.T) {
	sig := InspectBytes(compressedPDF(t))

	assert.Equal(t, 1, sig.PageCount)
	assert.True(t, sig.Readable)
	assert.Contains(t, sig.Text, "Avis d'impot 2025")
	assert.Contains(t, sig.Text, "Revenu fiscal de reference : 38 500")
}

func TestInspectBytesSignedPDF(t *testing.T) {
	signed := plainPDF + "6 0 obj << /Type /Sig /Filter /Adobe.PPKLite /ByteRange [0 840 960 240] >> endobj\n"

	sig := InspectBytes([]byte(signed))

	assert.True(t, sig.SignaturePresent)
	assert.Equal(t, 2, sig.PageCount)
}

func TestInspectBytesPDFWithEmbedded2DDoc(t *testing.T) {
	pdf := plainPDF + "% " + taxNoticePayload() + "\n"

	sig := InspectBytes([]byte(pdf))

	require.NotNil(t, sig.TwoDDoc)
	assert.True(t, sig.TwoDDoc.Valid)
	assert.Equal(t, "2024", sig.TwoDDoc.Fields["45"])
}

func TestInspectBytesImage(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), 0x00, 0x00, 0x00, 0x0d, 'I', 'H', 'D', 'R')

	sig := InspectBytes(png)

	assert.Equal(t, 1, sig.PageCount)
	assert.True(t, sig.Readable)
	assert.Empty(t, sig.Text)
	assert.Nil(t, sig.MRZ)
}

func TestInspectBytesText(t *testing.T) {
	text := "CARTE NATIONALE D'IDENTITE\n" + td1Line1 + "\n" + td1Line2Future + "\n" + td1Line3 + "\n"

	sig := InspectBytes([]byte(text))

	assert.Equal(t, 1, sig.PageCount)
	assert.True(t, sig.Readable)
	require.NotNil(t, sig.MRZ)
	assert.Equal(t, "TD1", sig.MRZ.Format)
	assert.True(t, sig.MRZ.Valid)
}

func TestInspectBytesUnreadable(t *testing.T) {
	assert.Equal(t, documents.Signals{Source: Name}, InspectBytes(nil))

	sig := InspectBytes([]byte{0xff, 0xfe, 0x00, 0x81})
	assert.Equal(t, 0, sig.PageCount)
	assert.False(t, sig.Readable)

	blank := InspectBytes([]byte("  \n\t"))
	assert.False(t, blank.Readable)
}

type memOpener struct {
	files  map[string][]byte
	err    error
	tenant *string
}

func (m memOpener) Open(_ context.Context, tenant, fileURL string) (io.ReadCloser, error) {
	if m.tenant != nil {
		*m.tenant = tenant
	}
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.files[fileURL]
	if !ok {
		return nil, documents.ErrNotStored
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestSourceInspect(t *testing.T) {
	ctx := context.Background()
	files := memOpener{files: map[string][]byte{
		"s3://docs/bulletin.pdf": []byte(plainPDF),
	}}

	t.Run("stored document", func(t *testing.T) {
		sig, err := NewSource(files, 1<<20).Inspect(ctx, documents.Request{FileURL: "s3://docs/bulletin.pdf"})

		require.NoError(t, err)
		assert.Equal(t, 2, sig.PageCount)
		assert.Contains(t, sig.Text, "Net a payer")
	})

	t.Run("tenant is passed to the store", func(t *testing.T) {
		var seen string
		scoped := memOpener{files: files.files, tenant: &seen}
		_, err := NewSource(scoped, 1<<20).Inspect(ctx, documents.Request{FileURL: "s3://docs/bulletin.pdf", TenantID: "acme"})

		require.NoError(t, err)
		assert.Equal(t, "acme", seen)
	})

	t.Run("foreign URL scores on name only", func(t *testing.T) {
		sig, err := NewSource(files, 1<<20).Inspect(ctx, documents.Request{FileURL: "https://elsewhere.example/x.pdf"})

		require.NoError(t, err)
		assert.Equal(t, documents.Signals{Source: Name}, sig)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := NewSource(files, 64).Inspect(ctx, documents.Request{FileURL: "s3://docs/bulletin.pdf"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, documents.ErrTooLarge))
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("connection refused")
		_, err := NewSource(memOpener{err: boom}, 0).Inspect(ctx, documents.Request{FileURL: "s3://docs/bulletin.pdf"})

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}
