package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// FileType represents the type of document file
type FileType int

const (
	TypeUnknown FileType = iota
	TypePDF
	TypeDOCX
)

// MaxFileSize is the maximum allowed file size (10MB)
const MaxFileSize = 10 * 1024 * 1024

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoText          = errors.New("no text content found")
	ErrTooLarge        = errors.New("file too large")
	ErrInvalidFilename = errors.New("invalid filename")
)

// DetectFileType determines the file type based on extension
func DetectFileType(filename string) FileType {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return TypePDF
	case ".docx":
		return TypeDOCX
	default:
		return TypeUnknown
	}
}

// ValidateFilename checks for path traversal and other malicious patterns
func ValidateFilename(filename string) error {
	if filename == "" {
		return fmt.Errorf("%w: empty", ErrInvalidFilename)
	}

	if strings.Contains(filename, "..") {
		return fmt.Errorf("%w: contains path traversal: ..", ErrInvalidFilename)
	}

	if strings.HasPrefix(filename, "/") || strings.HasPrefix(filename, "\\") {
		return fmt.Errorf("%w: cannot be an absolute path", ErrInvalidFilename)
	}

	if strings.ContainsRune(filename, '\x00') {
		return fmt.Errorf("%w: contains null byte", ErrInvalidFilename)
	}

	if strings.ContainsRune(filename, '\n') || strings.ContainsRune(filename, '\r') {
		return fmt.Errorf("%w: contains newline character", ErrInvalidFilename)
	}

	return nil
}

// readLimited reads r fully, failing once more than MaxFileSize bytes arrive.
func readLimited(r io.Reader) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(content) > MaxFileSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, MaxFileSize)
	}
	return content, nil
}

// ExtractText validates an uploaded document and returns its plain text.
// The type is chosen from the filename extension.
func ExtractText(filename string, r io.Reader) (string, error) {
	if err := ValidateFilename(filename); err != nil {
		return "", err
	}

	fileType := DetectFileType(filename)
	if fileType == TypeUnknown {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(filename))
	}

	content, err := readLimited(r)
	if err != nil {
		return "", err
	}

	switch fileType {
	case TypePDF:
		return parsePDF(content)
	default:
		return parseDOCX(content)
	}
}
