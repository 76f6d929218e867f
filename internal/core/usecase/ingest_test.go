package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

type recordingStorage struct {
	saved   map[string][]byte
	saveErr error
}

func (s *recordingStorage) Save(_ context.Context, key string, data io.Reader) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[key] = raw
	return nil
}

func (s *recordingStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := s.saved[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type recordingDocs struct {
	created   []*domain.Document
	createErr error
	byID      map[string]*domain.Document
	statuses  []string
	ready     []int
}

func (d *recordingDocs) Create(_ context.Context, doc *domain.Document) error {
	if d.createErr != nil {
		return d.createErr
	}
	d.created = append(d.created, doc)
	return nil
}

func (d *recordingDocs) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := d.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New("id="+id))
	}
	return doc, nil
}

func (d *recordingDocs) ListBySession(context.Context, string) ([]domain.Document, error) {
	return nil, nil
}

func (d *recordingDocs) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	d.statuses = append(d.statuses, string(status)+":"+errMessage)
	return nil
}

func (d *recordingDocs) MarkReady(_ context.Context, _ string, chunkCount int) error {
	d.ready = append(d.ready, chunkCount)
	return nil
}

type recordingQueue struct {
	published  []string
	publishErr error
}

func (q *recordingQueue) PublishDocumentIngested(_ context.Context, documentID string) error {
	if q.publishErr != nil {
		return q.publishErr
	}
	q.published = append(q.published, documentID)
	return nil
}

func (q *recordingQueue) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadStoresCreatesAndPublishes(t *testing.T) {
	storage := &recordingStorage{}
	docs := &recordingDocs{}
	queue := &recordingQueue{}
	uc := NewIngestDocumentUseCase(docs, &fakeSessions{}, storage, queue)

	doc, err := uc.Upload(context.Background(), "s1", "Q3 Report.pdf", "application/pdf",
		strings.NewReader("content"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.Status != domain.StatusUploaded || doc.SessionID != "s1" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if len(storage.saved) != 1 {
		t.Fatalf("expected one stored object, got %d", len(storage.saved))
	}
	if !strings.HasSuffix(doc.StoragePath, "_Q3_Report.pdf") {
		t.Fatalf("expected sanitized storage key, got %q", doc.StoragePath)
	}
	if len(docs.created) != 1 {
		t.Fatalf("expected document metadata created")
	}
	if len(queue.published) != 1 || queue.published[0] != doc.ID {
		t.Fatalf("expected ingestion event for %s, got %v", doc.ID, queue.published)
	}
}

func TestUploadUnknownSessionFails(t *testing.T) {
	sessions := &failingSessions{err: domain.WrapError(domain.ErrSessionNotFound, "get session", errors.New("id=missing"))}
	uc := NewIngestDocumentUseCase(&recordingDocs{}, sessions, &recordingStorage{}, &recordingQueue{})

	_, err := uc.Upload(context.Background(), "missing", "a.txt", "text/plain", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestUploadStorageFailureAborts(t *testing.T) {
	storage := &recordingStorage{saveErr: errors.New("disk full")}
	docs := &recordingDocs{}
	queue := &recordingQueue{}
	uc := NewIngestDocumentUseCase(docs, &fakeSessions{}, storage, queue)

	_, err := uc.Upload(context.Background(), "s1", "a.txt", "text/plain", strings.NewReader("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(docs.created) != 0 || len(queue.published) != 0 {
		t.Fatalf("no metadata or event should exist after storage failure")
	}
}

func TestUploadPublishFailureSurfaces(t *testing.T) {
	queue := &recordingQueue{publishErr: errors.New("nats down")}
	uc := NewIngestDocumentUseCase(&recordingDocs{}, &fakeSessions{}, &recordingStorage{}, queue)

	_, err := uc.Upload(context.Background(), "s1", "a.txt", "text/plain", strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "publish ingestion event") {
		t.Fatalf("expected publish error, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Q3 Report.pdf", "Q3_Report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"notes (final)!.docx", "notes__final__.docx"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// failingSessions returns the configured error from every lookup.
type failingSessions struct {
	fakeSessions
	err error
}

func (f *failingSessions) GetSession(context.Context, string) (*domain.Session, error) {
	return nil, f.err
}
