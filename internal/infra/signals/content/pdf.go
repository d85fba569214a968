package content

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	rxPDFPage   = regexp.MustCompile(`/Type\s*/Page\b`)
	rxPDFStream = regexp.MustCompile(`(?s)stream\r?\n(.*?)\r?\nendstream`)
	// literal Tj, hex Tj, TJ array; in content order
	rxPDFShow   = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)\s*(?:Tj|')|<([0-9A-Fa-f\s]*)>\s*(?:Tj|')|\[((?:\\.|[^\]\\])*)\]\s*TJ`)
	rxPDFString = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)|<([0-9A-Fa-f\s]*)>`)
)

// inflated content streams are capped to keep a hostile PDF cheap
const maxInflatedStream = 8 << 20

type pdfInfo struct {
	pages  int
	signed bool
	text   string
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-"))
}

// inspectPDF reads pages and text through the xref table and falls back to
// scanning raw content streams when the file cannot be parsed.
func inspectPDF(data []byte) pdfInfo {
	info, err := readPDF(data)
	if err != nil {
		info = scanPDF(data)
	}
	info.signed = bytes.Contains(data, []byte("/ByteRange")) && bytes.Contains(data, []byte("/Sig"))
	return info
}

func readPDF(data []byte) (info pdfInfo, err error) {
	defer func() {
		if p := recover(); p != nil {
			info, err = pdfInfo{}, fmt.Errorf("parse pdf: %v", p)
		}
	}()

	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return pdfInfo{}, err
	}
	info.pages = doc.NumPage()
	if info.pages <= 0 {
		return pdfInfo{}, errors.New("parse pdf: empty page tree")
	}

	fonts := make(map[string]*pdf.Font)
	parts := make([]string, 0, info.pages)
	for i := 1; i <= info.pages; i++ {
		page := doc.Page(i)
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return pdfInfo{}, fmt.Errorf("parse pdf page %d: %w", i, err)
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	info.text = strings.Join(parts, "\n")
	return info, nil
}

// scanPDF handles files without a usable xref, such as truncated uploads.
func scanPDF(data []byte) pdfInfo {
	info := pdfInfo{pages: len(rxPDFPage.FindAllIndex(data, -1))}

	var parts []string
	streamPages := 0
	for _, m := range rxPDFStream.FindAllSubmatch(data, -1) {
		body := m[1]
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			if inflated, err := io.ReadAll(io.LimitReader(zr, maxInflatedStream)); err == nil {
				body = inflated
			}
			zr.Close()
		}
		streamPages += len(rxPDFPage.FindAllIndex(body, -1))
		parts = append(parts, textOperators(body)...)
	}
	// PDF 1.5 object streams hide page objects from the raw scan
	if info.pages == 0 {
		info.pages = streamPages
	}
	info.text = strings.Join(parts, "\n")
	return info
}

func textOperators(content []byte) []string {
	var out []string
	for _, m := range rxPDFShow.FindAllSubmatchIndex(content, -1) {
		var s string
		switch {
		case m[2] >= 0:
			s = unescapePDF(content[m[2]:m[3]])
		case m[4] >= 0:
			s = decodeHexString(content[m[4]:m[5]])
		default:
			var b strings.Builder
			for _, e := range rxPDFString.FindAllSubmatch(content[m[6]:m[7]], -1) {
				if e[1] != nil {
					b.WriteString(unescapePDF(e[1]))
				} else {
					b.WriteString(decodeHexString(e[2]))
				}
			}
			s = b.String()
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func decodeHexString(s []byte) string {
	digits := bytes.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			return -1
		}
		return r
	}, s)
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out, err := hex.DecodeString(string(digits))
	if err != nil {
		return ""
	}
	return string(out)
}

func unescapePDF(s []byte) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(string(s[i:j]), 8, 8)
			b.WriteByte(byte(v))
			i = j - 1
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
