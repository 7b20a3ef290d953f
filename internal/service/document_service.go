package service

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
)

// maxDocumentBytes caps uploads; larger files are rejected before
// extraction.
const maxDocumentBytes = 10 << 20

// DocumentService extracts plain text from an uploaded study document so it
// can feed quiz generation. Files are extract-and-discard: nothing is stored.
type DocumentService interface {
	ExtractText(header *multipart.FileHeader) (string, error)
}

type documentService struct{}

func NewDocumentService() DocumentService {
	return &documentService{}
}

func (s *documentService) ExtractText(header *multipart.FileHeader) (string, error) {
	if header.Size > maxDocumentBytes {
		return "", fmt.Errorf("document exceeds the %d MB limit", maxDocumentBytes>>20)
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	var text string
	switch ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".txt", ".md":
		text = string(data)
	default:
		return "", fmt.Errorf("unsupported document type %q (want .pdf, .docx, .txt or .md)", ext)
	}
	if err != nil {
		log.Error().Err(err).Str("filename", header.Filename).Msg("Document text extraction failed")
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text could be extracted from %q", header.Filename)
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read PDF: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}
		b.WriteString(content)
	}
	return b.String(), nil
}

// extractDOCX pulls the text runs out of word/document.xml. A .docx file is
// a zip archive.
func extractDOCX(data []byte) (string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read DOCX archive: %w", err)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("DOCX archive has no word/document.xml")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open word/document.xml: %w", err)
	}
	defer rc.Close()

	var b strings.Builder
	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse word/document.xml: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == "t" {
			var text string
			if err := decoder.DecodeElement(&text, &se); err == nil {
				b.WriteString(text)
				b.WriteString(" ")
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
