// Package filecheck sniffs upload content. The client's declared Content-Type
// is advisory only; the bytes decide.
package filecheck

import (
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/slidespace/backend/internal/core/domain"
)

var pdfMagic = []byte("%PDF-")

// Detect returns the verified MIME type of an upload, or ErrInvalidInput when
// the content is neither a parseable PDF nor a DOCX container.
func Detect(data []byte) (string, error) {
	if len(data) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "detect file type", fmt.Errorf("empty file"))
	}
	if bytes.HasPrefix(data, pdfMagic) {
		if err := checkPDF(data); err != nil {
			return "", domain.WrapError(domain.ErrInvalidInput, "detect file type", err)
		}
		return domain.MimePDF, nil
	}
	if isDOCX(data) {
		return domain.MimeDOCX, nil
	}
	return "", domain.WrapError(domain.ErrInvalidInput, "detect file type", fmt.Errorf("unsupported file type"))
}

func checkPDF(data []byte) error {
	if _, err := pdf.NewReader(bytes.NewReader(data), int64(len(data))); err != nil {
		return fmt.Errorf("parse pdf: %w", err)
	}
	return nil
}

// A DOCX is a ZIP container holding word/document.xml.
func isDOCX(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return true
		}
	}
	return false
}
