package service

import (
	"archive/zip"
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
)

// uploadHeader builds a real multipart.FileHeader the way gin would hand it
// to the service.
func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func docxBytes(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := f.Write([]byte(documentXML)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextPlain(t *testing.T) {
	svc := NewDocumentService()

	for _, name := range []string{"notes.txt", "notes.md"} {
		header := uploadHeader(t, name, []byte("  mitochondria are the powerhouse of the cell  "))
		text, err := svc.ExtractText(header)
		if err != nil {
			t.Fatalf("%s: ExtractText: %v", name, err)
		}
		if text != "mitochondria are the powerhouse of the cell" {
			t.Errorf("%s: text = %q", name, text)
		}
	}
}

func TestExtractTextDOCX(t *testing.T) {
	svc := NewDocumentService()
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Photosynthesis converts light</w:t></w:r></w:p>
    <w:p><w:r><w:t>into chemical energy.</w:t></w:r></w:p>
  </w:body>
</w:document>`

	header := uploadHeader(t, "bio.docx", docxBytes(t, doc))
	text, err := svc.ExtractText(header)
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "Photosynthesis converts light") || !strings.Contains(text, "into chemical energy.") {
		t.Errorf("extracted text = %q", text)
	}
}

func TestExtractTextDOCXWithoutDocumentXML(t *testing.T) {
	svc := NewDocumentService()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("word/styles.xml")
	f.Write([]byte("<styles/>"))
	zw.Close()

	header := uploadHeader(t, "broken.docx", buf.Bytes())
	if _, err := svc.ExtractText(header); err == nil {
		t.Error("expected error for DOCX without word/document.xml")
	}
}

func TestExtractTextUnsupportedType(t *testing.T) {
	svc := NewDocumentService()
	header := uploadHeader(t, "slides.pptx", []byte("irrelevant"))
	if _, err := svc.ExtractText(header); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestExtractTextEmptyDocument(t *testing.T) {
	svc := NewDocumentService()
	header := uploadHeader(t, "empty.txt", []byte("   \n\t  "))
	if _, err := svc.ExtractText(header); err == nil {
		t.Error("expected error when no text could be extracted")
	}
}
