package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// Document messages.
const (
	MsgDocumentRequired = "Verification document is required."
	MsgDocumentType     = "Invalid file type. Please upload PDF, JPG, PNG, or DOC files."
)

// DocumentSizeMessage reports the upload limit in binary units, e.g. "5.0 MiB".
func DocumentSizeMessage(maxBytes int64) string {
	if maxBytes < 0 {
		maxBytes = 0
	}
	return fmt.Sprintf("File size too large. Maximum %s allowed.", humanize.IBytes(uint64(maxBytes)))
}

var allowedDocumentExtensions = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"doc":  true,
	"docx": true,
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9.]`)

// Upload is an identity document supplied with a registration.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// CheckDocument returns the validation message for doc, or "" when it is acceptable.
func CheckDocument(doc *Upload, maxBytes int64) string {
	if doc == nil || doc.Content == nil || doc.Filename == "" {
		return MsgDocumentRequired
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(doc.Filename), "."))
	if !allowedDocumentExtensions[ext] {
		return MsgDocumentType
	}
	if doc.Size > maxBytes {
		return DocumentSizeMessage(maxBytes)
	}
	return ""
}

// DocumentName builds the stored name for an uploaded file.
func DocumentName(original string, now time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%d_%s_%s", now.Unix(), hex, unsafeFileChars.ReplaceAllString(filepath.Base(original), "_"))
}

// DocumentStore persists uploaded verification documents.
type DocumentStore interface {
	Save(ctx context.Context, name string, r io.Reader, maxBytes int64) error
	Remove(ctx context.Context, name string) error
}

type localDocumentStore struct {
	dir string
}

// NewLocalDocumentStore creates a DocumentStore writing into dir.
func NewLocalDocumentStore(dir string) DocumentStore {
	return &localDocumentStore{dir: dir}
}

var errDocumentTooLarge = errors.New("document exceeds size limit")

func (s *localDocumentStore) Save(ctx context.Context, name string, r io.Reader, maxBytes int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("invalid document name %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.dir, name)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	if err == nil && written > maxBytes {
		err = errDocumentTooLarge
	}
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (s *localDocumentStore) Remove(_ context.Context, name string) error {
	if name == "" || name != filepath.Base(name) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	return nil
}
