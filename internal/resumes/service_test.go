package resumes

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"jobfit-backend/internal/extract"
	"jobfit-backend/internal/queue"
	"jobfit-backend/internal/shared/storage/object"
	localstore "jobfit-backend/internal/shared/storage/object/local"
)

func docxBytes(t *testing.T, text string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	_, _ = w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` +
		text + `</w:t></w:r></w:p></w:body></w:document>`))
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

type recordingQueue struct {
	mu   sync.Mutex
	sent []queue.Message
	err  error
}

func (q *recordingQueue) Send(ctx context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, msg)
	return nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return &Service{Store: localstore.New(t.TempDir()), Repo: NewMemoryRepo()}
}

func TestUploadParsesInlineWithoutQueue(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Upload(ctx, "user-1", "CV.DOCX", bytes.NewReader(docxBytes(t, "Python and Docker on AWS")), "req-1")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Status != StatusParsed {
		t.Fatalf("expected parsed, got %s (%s)", res.Status, res.Error)
	}
	if res.ExtractedText != "Python and Docker on AWS" {
		t.Fatalf("unexpected text %q", res.ExtractedText)
	}
	want := []string{"Python", "AWS", "Docker"}
	if strings.Join(res.Skills, ",") != strings.Join(want, ",") {
		t.Fatalf("skills = %v, want %v", res.Skills, want)
	}
	if res.ParsedAt == nil || res.StorageProvider != "local" {
		t.Fatalf("unexpected record: %+v", res)
	}
}

func TestUploadRecordsFailedParse(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Upload(context.Background(), "user-1", "broken.pdf", strings.NewReader("not really a pdf"), "")
	if err != nil {
		t.Fatalf("upload should succeed even when parsing fails: %v", err)
	}
	if res.Status != StatusFailed || res.Error == "" {
		t.Fatalf("expected failed status with error, got %+v", res)
	}
	if len(res.Skills) != 0 {
		t.Fatalf("failed parse must not report skills: %v", res.Skills)
	}
}

func TestUploadEnqueuesWhenQueueConfigured(t *testing.T) {
	svc := newTestService(t)
	q := &recordingQueue{}
	svc.Queue = q

	res, err := svc.Upload(context.Background(), "user-1", "cv.docx", bytes.NewReader(docxBytes(t, "Go")), "req-9")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Status != StatusProcessing {
		t.Fatalf("expected processing, got %s", res.Status)
	}
	if len(q.sent) != 1 || q.sent[0].ResumeID != res.ID || q.sent[0].RequestID != "req-9" {
		t.Fatalf("unexpected queue messages: %+v", q.sent)
	}

	if err := svc.Process(context.Background(), res.ID); err != nil {
		t.Fatalf("process: %v", err)
	}
	stored, _ := svc.Repo.GetByID(context.Background(), res.ID)
	if stored.Status != StatusParsed {
		t.Fatalf("expected parsed after worker run, got %s", stored.Status)
	}
}

func TestUploadFallsBackInlineWhenEnqueueFails(t *testing.T) {
	svc := newTestService(t)
	svc.Queue = &recordingQueue{err: errors.New("queue down")}

	res, err := svc.Upload(context.Background(), "user-1", "cv.docx", bytes.NewReader(docxBytes(t, "Rust")), "")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if res.Status != StatusParsed {
		t.Fatalf("expected inline parse, got %s", res.Status)
	}
}

func TestUploadValidation(t *testing.T) {
	svc := newTestService(t)
	svc.MaxBytes = 8
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "u", "photo.png", strings.NewReader("x"), ""); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := svc.Upload(ctx, "u", "empty.pdf", strings.NewReader(""), ""); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
	if _, err := svc.Upload(ctx, "u", "big.pdf", strings.NewReader("0123456789"), ""); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, err := svc.Upload(ctx, "u", "../../etc.pdf", strings.NewReader("x"), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	list, _ := svc.ListByUser(ctx, "u")
	if len(list) != 0 {
		t.Fatalf("rejected uploads must not be recorded, got %d", len(list))
	}
}

func TestProcessIsIdempotentForParsedResume(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	res, err := svc.Upload(ctx, "u", "cv.docx", bytes.NewReader(docxBytes(t, "Java")), "")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := svc.Store.Delete(ctx, res.StorageKey); err != nil {
		t.Fatalf("delete blob: %v", err)
	}
	if err := svc.Process(ctx, res.ID); err != nil {
		t.Fatalf("second process should be a no-op, got %v", err)
	}
}

func TestProcessMissingBlobReturnsError(t *testing.T) {
	svc := newTestService(t)
	svc.Queue = &recordingQueue{}
	ctx := context.Background()
	res, err := svc.Upload(ctx, "u", "cv.docx", bytes.NewReader(docxBytes(t, "Java")), "")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	_ = svc.Store.Delete(ctx, res.StorageKey)
	if err := svc.Process(ctx, res.ID); err == nil {
		t.Fatal("expected storage error")
	}
	if err := svc.Process(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type unreadableStore struct {
	object.ObjectStore
	deleted []string
}

func (s *unreadableStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return nil, errors.New("disk unavailable")
}

func (s *unreadableStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return s.ObjectStore.Delete(ctx, key)
}

func TestUploadCleansUpWhenInlineParseCannotRun(t *testing.T) {
	store := &unreadableStore{ObjectStore: localstore.New(t.TempDir())}
	svc := &Service{Store: store, Repo: NewMemoryRepo()}
	ctx := context.Background()

	if _, err := svc.Upload(ctx, "user-1", "cv.docx", bytes.NewReader(docxBytes(t, "Go")), ""); err == nil {
		t.Fatal("expected upload to fail when the stored file cannot be read")
	}
	list, err := svc.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no lingering record, got %+v", list)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected stored file to be removed, got %v", store.deleted)
	}
}

func TestOwnershipAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	res, err := svc.Upload(ctx, "owner", "cv.docx", bytes.NewReader(docxBytes(t, "Go")), "")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if _, err := svc.Get(ctx, "intruder", res.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, "intruder", res.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}
	if err := svc.Delete(ctx, "owner", res.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, "owner", res.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := svc.Store.Open(ctx, res.StorageKey); err == nil {
		t.Fatal("expected stored file to be removed")
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	svc := newTestService(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.Now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()
	first, _ := svc.Upload(ctx, "u", "a.docx", bytes.NewReader(docxBytes(t, "Go")), "")
	second, _ := svc.Upload(ctx, "u", "b.docx", bytes.NewReader(docxBytes(t, "Go")), "")
	_, _ = svc.Upload(ctx, "other", "c.docx", bytes.NewReader(docxBytes(t, "Go")), "")

	list, err := svc.ListByUser(ctx, "u")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 resumes, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", list[0].ID, list[1].ID)
	}
}

func TestDocumentMime(t *testing.T) {
	cases := []struct{ sniffed, name, want string }{
		{"application/pdf", "cv.pdf", extract.MimePDF},
		{"text/plain; charset=utf-8", "cv.pdf", extract.MimePDF},
		{"application/zip", "cv.docx", extract.MimeDOCX},
		{"application/octet-stream", "cv.doc", extract.MimeDOC},
	}
	for _, c := range cases {
		if got := documentMime(c.sniffed, c.name); got != c.want {
			t.Fatalf("documentMime(%q, %q) = %q, want %q", c.sniffed, c.name, got, c.want)
		}
	}
}
