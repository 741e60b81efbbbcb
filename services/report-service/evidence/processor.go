// Package evidence validates and stores uploaded evidence files. Files are
// renamed to generated names, hashed with SHA-256 while streaming into the
// blob store, and only their metadata ends up on the report document.
package evidence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"ethics-reporting-system/pkg/security"
	"ethics-reporting-system/pkg/storage"
	"ethics-reporting-system/services/report-service/models"
)

const (
	DefaultMaxFileSize = 10 << 20 // 10 MiB
	MaxFilenameLen     = 255
)

var allowedMimeTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"text/plain":         true,
	"text/csv":           true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// Upload is a single inbound file, decoupled from multipart so the
// processor is testable without an HTTP request.
type Upload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

// ValidationError is one rejected aspect of one file. Validation collects
// all problems rather than stopping at the first.
type ValidationError struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// FileError is a per-file processing failure inside a batch.
type FileError struct {
	Filename string `json:"filename"`
	Code     string `json:"code"`
	Reason   string `json:"reason"`
}

type Processor struct {
	store       storage.BlobStore
	maxFileSize int64
}

func NewProcessor(store storage.BlobStore, maxFileSize int64) *Processor {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Processor{store: store, maxFileSize: maxFileSize}
}

func (p *Processor) Validate(u Upload) []ValidationError {
	var errs []ValidationError
	name := security.SanitizeOriginalName(u.OriginalName)

	if u.Size > p.maxFileSize {
		errs = append(errs, ValidationError{
			Filename: name,
			Code:     "FILE_TOO_LARGE",
			Message:  fmt.Sprintf("File exceeds maximum size of %d bytes", p.maxFileSize),
		})
	}
	if !allowedMimeTypes[normalizeContentType(u.ContentType)] {
		errs = append(errs, ValidationError{
			Filename: name,
			Code:     "INVALID_FILE_TYPE",
			Message:  fmt.Sprintf("File type %q is not allowed", u.ContentType),
		})
	}
	if len(u.OriginalName) > MaxFilenameLen {
		errs = append(errs, ValidationError{
			Filename: name,
			Code:     "FILENAME_TOO_LONG",
			Message:  fmt.Sprintf("Filename exceeds %d characters", MaxFilenameLen),
		})
	}
	return errs
}

// Process validates, renames, stores and hashes a single upload. The
// returned metadata never includes file content.
func (p *Processor) Process(ctx context.Context, u Upload) (models.EvidenceFile, error) {
	if errs := p.Validate(u); len(errs) > 0 {
		return models.EvidenceFile{}, fmt.Errorf("%s: %s", errs[0].Code, errs[0].Message)
	}

	src, err := u.Open()
	if err != nil {
		return models.EvidenceFile{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	contentType := normalizeContentType(u.ContentType)
	storedName := security.SecureFilename(u.OriginalName)

	if strings.HasPrefix(contentType, "image/") {
		// EXIF stripping is not implemented yet; the gap is recorded on the
		// evidence entry via MetadataStripped=false.
		log.Printf("[INFO] Image metadata stripping skipped for %s (not implemented)", storedName)
	}

	hasher := sha256.New()
	// Cap the stream at the declared max so a lying Content-Length cannot
	// push an oversized body into storage.
	reader := io.TeeReader(io.LimitReader(src, p.maxFileSize+1), hasher)

	if err := p.store.Put(ctx, storedName, reader, u.Size, contentType); err != nil {
		// best-effort cleanup of a partial write
		if rmErr := p.store.Remove(context.Background(), storedName); rmErr != nil {
			log.Printf("[WARN] Failed to remove partial evidence %s: %v", storedName, rmErr)
		}
		return models.EvidenceFile{}, fmt.Errorf("failed to store evidence: %w", err)
	}

	info, err := p.store.Stat(ctx, storedName)
	if err != nil {
		return models.EvidenceFile{}, fmt.Errorf("failed to stat stored evidence: %w", err)
	}
	if info.Size > p.maxFileSize {
		p.store.Remove(context.Background(), storedName)
		return models.EvidenceFile{}, fmt.Errorf("FILE_TOO_LARGE: stored size exceeds limit")
	}

	return models.EvidenceFile{
		Filename:         storedName,
		OriginalName:     security.SanitizeOriginalName(u.OriginalName),
		MimeType:         contentType,
		Size:             info.Size,
		SHA256:           hex.EncodeToString(hasher.Sum(nil)),
		MetadataStripped: false,
		UploadedAt:       time.Now(),
	}, nil
}

// ProcessAll processes uploads independently; one failure never aborts the
// rest. Failures come back alongside the successes.
func (p *Processor) ProcessAll(ctx context.Context, uploads []Upload) ([]models.EvidenceFile, []FileError) {
	var processed []models.EvidenceFile
	var failures []FileError

	for _, u := range uploads {
		meta, err := p.Process(ctx, u)
		if err != nil {
			code := "PROCESSING_FAILED"
			if errs := p.Validate(u); len(errs) > 0 {
				code = errs[0].Code
			}
			failures = append(failures, FileError{
				Filename: security.SanitizeOriginalName(u.OriginalName),
				Code:     code,
				Reason:   err.Error(),
			})
			continue
		}
		processed = append(processed, meta)
	}
	return processed, failures
}

// Retrieve stats a stored evidence file for admin-gated downloads.
func (p *Processor) Retrieve(ctx context.Context, filename string) (storage.BlobInfo, error) {
	return p.store.Stat(ctx, filename)
}

// OpenFile streams a stored evidence file.
func (p *Processor) OpenFile(ctx context.Context, filename string) (io.ReadCloser, error) {
	return p.store.Open(ctx, filename)
}

func normalizeContentType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
