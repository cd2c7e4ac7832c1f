package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const PDFContentType = "application/pdf"

var ErrGuidelineNotFound = errors.New("guideline document not available")

// Document is a downloadable file.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// GuidelineSource fetches the writing guideline document.
type GuidelineSource interface {
	Fetch(ctx context.Context) (*Document, error)
}

// FileGuidelineSource reads the guideline from the local filesystem.
type FileGuidelineSource struct {
	Path     string
	Filename string
}

func NewFileGuidelineSource(path, filename string) *FileGuidelineSource {
	if filename == "" {
		filename = filepath.Base(path)
	}
	return &FileGuidelineSource{Path: path, Filename: filename}
}

func (s *FileGuidelineSource) Fetch(ctx context.Context) (*Document, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrGuidelineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read guideline: %w", err)
	}
	return &Document{Filename: s.Filename, ContentType: PDFContentType, Data: data}, nil
}

// NoGuidelineSource is used when nothing is configured.
type NoGuidelineSource struct{}

func (NoGuidelineSource) Fetch(ctx context.Context) (*Document, error) {
	return nil, ErrGuidelineNotFound
}
