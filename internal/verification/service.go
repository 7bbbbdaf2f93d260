package verification

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nibret/receipt-verifier/internal/assist"
	"github.com/nibret/receipt-verifier/internal/extraction"
)

// Verifier runs the extraction pipeline over one receipt document.
// *extraction.Engine satisfies it.
type Verifier interface {
	VerifyDocument(data []byte, contentType string) extraction.VerificationResult
	VerifyText(text string) extraction.VerificationResult
	Provider() string
}

// IDGenerator generates unique IDs for verification records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates IDs using UnixNano timestamp
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles verification operations: fetch a receipt, run the
// extraction engine, optionally consult the assist scanner, and persist
// the audit record plus the document itself.
type Service struct {
	db          DB
	engine      Verifier
	fetcher     Fetcher
	storage     Storage
	scanner     assist.Scanner // nil disables the assist path
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, engine Verifier, fetcher Fetcher, storage Storage, scanner assist.Scanner) *Service {
	return &Service{
		db:          db,
		engine:      engine,
		fetcher:     fetcher,
		storage:     storage,
		scanner:     scanner,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, engine Verifier, fetcher Fetcher, storage Storage, scanner assist.Scanner, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		engine:      engine,
		fetcher:     fetcher,
		storage:     storage,
		scanner:     scanner,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	filenameCharsRE = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaceRE = regexp.MustCompile(`\s+`)
)

// sanitizeBase cleans up a base name (no extension) by removing special
// characters and truncating length. Dots are stripped, so a transaction
// reference like "FT25.ABC" cannot smuggle in a pseudo-extension.
func sanitizeBase(name string) string {
	name = filenameCharsRE.ReplaceAllString(name, "")
	name = filenameSpaceRE.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	maxLen := 50
	if len(name) > maxLen {
		name = name[:maxLen]
	}

	if name == "" {
		name = "receipt"
	}

	return name
}

// sanitizeFilename cleans up a filename, preserving its extension
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	return sanitizeBase(strings.TrimSuffix(filename, ext)) + ext
}

// extensionFor maps a declared content type to an archive file extension
func extensionFor(contentType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	switch mediaType {
	case "application/pdf":
		return ".pdf"
	case "text/html", "application/xhtml+xml":
		return ".html"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}

// VerifyReference fetches the receipt for a transaction reference from the
// provider and runs it through the pipeline. A fetch failure is not an
// error to the caller: it is recorded as a failed verification, and the
// engine is never started.
func (s *Service) VerifyReference(ctx context.Context, reference string) (*Record, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("a transaction reference is required")
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	data, contentType, err := s.fetcher.Fetch(ctx, reference)
	if err != nil {
		slog.Warn("Failed to fetch receipt",
			"provider", s.engine.Provider(),
			"reference", reference,
			"error", err,
		)
		record := &Record{
			ID:        id,
			Provider:  s.engine.Provider(),
			Reference: reference,
			Result: extraction.VerificationResult{
				Error: "unable to retrieve receipt document",
			},
			CreatedAt: now,
		}
		if err := s.db.SaveRecord(record); err != nil {
			return nil, fmt.Errorf("saving record to database: %w", err)
		}
		return record, nil
	}

	filename := sanitizeBase(reference) + extensionFor(contentType)
	return s.verify(id, now, reference, filename, data, contentType)
}

// VerifyUpload runs a caller-supplied receipt document through the
// pipeline, skipping the fetch step.
func (s *Service) VerifyUpload(filename string, data []byte, contentType string) (*Record, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("an empty document cannot be verified")
	}

	id := s.idGenerator.Generate()
	now := s.timeSource.Now()

	return s.verify(id, now, "", sanitizeFilename(filename), data, contentType)
}

// verify archives the document, runs the engine, consults the assist
// scanner when the engine rejected the receipt, and persists the record.
func (s *Service) verify(id string, now time.Time, reference, filename string, data []byte, contentType string) (*Record, error) {
	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, filename), data)
	if err != nil {
		return nil, fmt.Errorf("archiving document: %w", err)
	}

	result := s.engine.VerifyDocument(data, contentType)

	record := &Record{
		ID:           id,
		Provider:     s.engine.Provider(),
		Reference:    reference,
		Result:       result,
		DocumentPath: savedPath,
		ContentType:  contentType,
		CreatedAt:    now,
	}
	if record.Reference == "" {
		record.Reference = result.TransactionReference
	}

	if !result.Success && s.scanner != nil {
		fields, err := s.scanner.ScanReceipt(data, contentType)
		if err != nil {
			slog.Warn("Assist scan failed",
				"provider", record.Provider,
				"reference", record.Reference,
				"error", err,
			)
		} else {
			record.AssistFields = fields
		}
	}

	if err := s.db.SaveRecord(record); err != nil {
		// Clean up the archived document if the record cannot be saved
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving record to database: %w", err)
	}

	return record, nil
}

// GetRecord retrieves a verification record by ID
func (s *Service) GetRecord(id string) (*Record, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return record, nil
}

// ListRecords returns all verification records
func (s *Service) ListRecords() ([]*Record, error) {
	records, err := s.db.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return records, nil
}

// DeleteRecord removes a verification record and its archived document
func (s *Service) DeleteRecord(id string) error {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return fmt.Errorf("getting record for deletion: %w", err)
	}

	if record.DocumentPath != "" {
		if err := s.storage.Delete(record.DocumentPath); err != nil {
			// Log error but continue with database deletion
			slog.Warn("Failed to delete document", "path", record.DocumentPath, "error", err)
		}
	}

	if err := s.db.DeleteRecord(id); err != nil {
		return fmt.Errorf("deleting record from database: %w", err)
	}
	return nil
}

// GetRecordDocument retrieves the archived document for a record
func (s *Service) GetRecordDocument(id string) ([]byte, string, error) {
	record, err := s.db.GetRecord(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting record: %w", err)
	}
	if record.DocumentPath == "" {
		return nil, "", fmt.Errorf("record has no archived document")
	}

	data, err := s.storage.Get(record.DocumentPath)
	if err != nil {
		return nil, "", fmt.Errorf("getting archived document: %w", err)
	}

	return data, record.ContentType, nil
}
