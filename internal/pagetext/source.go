package pagetext

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists file types the service accepts as source text.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".docx": true,
}

// IsSupportedExtension checks if a filename can be turned into marked text.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// FromFile converts an uploaded file into page-marked plain text.
func FromFile(r io.Reader, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return fromText(r)
	case ".pdf":
		return fromPDF(r)
	case ".docx":
		return fromDOCX(r)
	default:
		return "", fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// fromText passes plain text through unchanged. OCR exports are expected to
// carry markers already; unmarked text is treated as a single page.
func fromText(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var sb strings.Builder
	for scanner.Scan() {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}
