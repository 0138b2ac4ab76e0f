// Package ingestion converts uploaded documents into normalized plain text
// and resolves which job-description source a request supplied.
package ingestion

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// SourceKind identifies how a piece of text entered the system.
type SourceKind string

// Source kinds for extracted text.
const (
	KindDOCX   SourceKind = "docx"
	KindPDF    SourceKind = "pdf"
	KindTXT    SourceKind = "txt"
	KindInline SourceKind = "inline"
)

// Extracted is the outcome of a document extraction. It is never partially
// populated: either OK is true and Text is non-empty, or OK is false and
// ErrorDetail explains why.
type Extracted struct {
	Text        string
	Kind        SourceKind
	OK          bool
	ErrorDetail string
}

// Upload holds an uploaded document's name and raw bytes.
type Upload struct {
	Filename string
	Content  []byte
}

// Ext returns the lower-cased filename extension, including the dot.
func (u *Upload) Ext() string {
	return strings.ToLower(filepath.Ext(u.Filename))
}

// SupportedExtension reports whether ext is one the extractor can handle.
func SupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".txt", ".docx", ".pdf":
		return true
	}
	return false
}

// Extract converts document bytes into normalized plain text based on the
// declared extension. Failures are reported in the result, never panicked.
func Extract(content []byte, ext string) Extracted {
	ext = strings.ToLower(ext)
	switch ext {
	case ".txt":
		return extractTXT(content)
	case ".docx":
		return extractDOCX(content)
	case ".pdf":
		return extractPDF(content)
	default:
		return failure(KindInline, fmt.Sprintf("unsupported file type: %s", ext))
	}
}

func extractTXT(content []byte) Extracted {
	if !utf8.Valid(content) {
		return failure(KindTXT, "text file is not valid UTF-8")
	}
	text := CleanText(string(content))
	if text == "" {
		return failure(KindTXT, "text file is empty")
	}
	return Extracted{Text: text, Kind: KindTXT, OK: true}
}

func extractDOCX(content []byte) (result Extracted) {
	// The extraction library can panic on adversarial input; a corrupt
	// upload must surface as a failed result, not a crashed handler.
	defer func() {
		if r := recover(); r != nil {
			result = failure(KindDOCX, fmt.Sprintf("could not read docx: %v", r))
		}
	}()

	path, cleanup, err := spool(content, ".docx")
	if err != nil {
		return failure(KindDOCX, err.Error())
	}
	defer cleanup()

	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return failure(KindDOCX, fmt.Sprintf("could not read docx: %v", err))
	}
	defer doc.Close()

	text, err := flattenDocumentXML(doc.Editable().GetContent())
	if err != nil {
		return failure(KindDOCX, fmt.Sprintf("could not parse docx content: %v", err))
	}
	text = CleanText(text)
	if text == "" {
		return failure(KindDOCX, "no text content found in docx")
	}
	return Extracted{Text: text, Kind: KindDOCX, OK: true}
}

func extractPDF(content []byte) (result Extracted) {
	// The pdf library reports malformed tokens by panicking, and only its
	// text accessors recover internally. Catch everything else here so a
	// corrupt upload always comes back as a failed result.
	defer func() {
		if r := recover(); r != nil {
			result = failure(KindPDF, fmt.Sprintf("could not read pdf: %v", r))
		}
	}()

	path, cleanup, err := spool(content, ".pdf")
	if err != nil {
		return failure(KindPDF, err.Error())
	}
	defer cleanup()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return failure(KindPDF, fmt.Sprintf("could not read pdf: %v", err))
	}
	defer func() { _ = f.Close() }()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	text := CleanText(sb.String())
	if text == "" {
		// Scanned or image-only PDFs have no text layer.
		return failure(KindPDF, "no extractable text in pdf (scanned or image-only document)")
	}
	return Extracted{Text: text, Kind: KindPDF, OK: true}
}

// spool writes content to a temporary file for path-based extraction
// libraries. The returned cleanup must run on every exit path.
func spool(content []byte, ext string) (string, func(), error) {
	tmp, err := os.CreateTemp("", "upload-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("could not create temp file: %v", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}
	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("could not write temp file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", nil, fmt.Errorf("could not close temp file: %v", err)
	}
	return tmp.Name(), cleanup, nil
}

// flattenDocumentXML walks word-processing XML and joins text runs,
// emitting one line per paragraph.
func flattenDocumentXML(content string) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader([]byte(content)))
	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Truncating on a decode error would silently drop content.
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "br", "cr":
				sb.WriteString("\n")
			case "tab":
				sb.WriteString("\t")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

func failure(kind SourceKind, detail string) Extracted {
	return Extracted{Kind: kind, ErrorDetail: detail}
}
