package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxAttachmentBytes upload size limit when none is configured.
const DefaultMaxAttachmentBytes int64 = 10 * 1024 * 1024

// ErrInvalidAttachment is wrapped by every attachment validation failure.
var ErrInvalidAttachment = errors.New("invalid attachment")

// FileRef reference to an uploaded document; the bytes live outside the
// record store.
type FileRef struct {
	Key         string `json:"key"`
	Name        string `json:"nome"`
	ContentType string `json:"tipo"`
	Size        int64  `json:"dimensione"`
	UploadedAt  string `json:"caricato_il"`
}

// NewFileRef validates an upload (PDF only, 0 < size <= maxBytes) and
// assigns a fresh key. maxBytes <= 0 uses DefaultMaxAttachmentBytes.
func NewFileRef(name, contentType string, size, maxBytes int64, now time.Time) (*FileRef, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxAttachmentBytes
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidAttachment)
	}
	if !strings.Contains(strings.ToLower(contentType), "pdf") {
		return nil, fmt.Errorf("%w: only PDF files are supported, got %q", ErrInvalidAttachment, contentType)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidAttachment)
	}
	if size > maxBytes {
		return nil, fmt.Errorf("%w: file too large, max %dMB", ErrInvalidAttachment, maxBytes/1024/1024)
	}
	return &FileRef{
		Key:         uuid.NewString(),
		Name:        name,
		ContentType: contentType,
		Size:        size,
		UploadedAt:  now.UTC().Format(time.RFC3339),
	}, nil
}
