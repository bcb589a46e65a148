package attachment

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/abduss/gotask/internal/task"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

func TestUploadStoresMetadataAndObject(t *testing.T) {
	repo := newFakeRepo()
	guard := newFakeGuard()
	objects := newFakeObjectStore()
	service := NewService(repo, guard, objects, "gotask", 0)

	owner, taskID := uuid.New(), uuid.New()
	guard.tasks[taskID] = owner

	fileHeader := buildFileHeader(t, "file", "../notes.txt", "text/plain", []byte("hello world"))

	meta, err := service.Upload(context.Background(), owner, taskID, fileHeader)
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	if meta.Filename != "notes.txt" {
		t.Fatalf("unexpected filename: %s", meta.Filename)
	}
	if meta.SizeBytes != int64(len("hello world")) {
		t.Fatalf("unexpected size: %d", meta.SizeBytes)
	}
	if meta.Checksum == "" {
		t.Fatalf("expected checksum")
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected metadata stored, got %d", len(repo.records))
	}
	if string(objects.objects[meta.ObjectName]) != "hello world" {
		t.Fatalf("expected object contents stored under %s", meta.ObjectName)
	}
}

func TestUploadRunsTaskGuard(t *testing.T) {
	guard := newFakeGuard()
	objects := newFakeObjectStore()
	service := NewService(newFakeRepo(), guard, objects, "gotask", 0)

	owner, intruder, taskID := uuid.New(), uuid.New(), uuid.New()
	guard.tasks[taskID] = owner
	fileHeader := buildFileHeader(t, "file", "a.txt", "text/plain", []byte("x"))

	if _, err := service.Upload(context.Background(), intruder, taskID, fileHeader); !errors.Is(err, task.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := service.Upload(context.Background(), owner, uuid.New(), fileHeader); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(objects.objects) != 0 {
		t.Fatalf("expected nothing stored, got %d objects", len(objects.objects))
	}
}

func TestUploadRejectsOversizedFiles(t *testing.T) {
	guard := newFakeGuard()
	objects := newFakeObjectStore()
	service := NewService(newFakeRepo(), guard, objects, "gotask", 4)

	owner, taskID := uuid.New(), uuid.New()
	guard.tasks[taskID] = owner
	fileHeader := buildFileHeader(t, "file", "big.bin", "application/octet-stream", []byte("too large"))

	if _, err := service.Upload(context.Background(), owner, taskID, fileHeader); !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if len(objects.objects) != 0 {
		t.Fatalf("expected no object stored")
	}
}

func TestDownloadAndDelete(t *testing.T) {
	repo := newFakeRepo()
	guard := newFakeGuard()
	objects := newFakeObjectStore()
	service := NewService(repo, guard, objects, "gotask", 0)

	owner, taskID := uuid.New(), uuid.New()
	guard.tasks[taskID] = owner
	meta, err := service.Upload(context.Background(), owner, taskID, buildFileHeader(t, "file", "data.bin", "", []byte("payload")))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if meta.ContentType != "application/octet-stream" {
		t.Fatalf("expected default content type, got %s", meta.ContentType)
	}

	_, reader, err := service.Download(context.Background(), owner, taskID, meta.ID)
	if err != nil {
		t.Fatalf("Download returned error: %v", err)
	}
	data, _ := io.ReadAll(reader)
	reader.Close()
	if string(data) != "payload" {
		t.Fatalf("unexpected payload %q", data)
	}

	if _, _, err := service.Download(context.Background(), owner, taskID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := service.Delete(context.Background(), owner, taskID, meta.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(objects.objects) != 0 || len(repo.records) != 0 {
		t.Fatalf("expected object and metadata removed")
	}
	if err := service.Delete(context.Background(), owner, taskID, meta.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteKeepsMetadataWhenObjectRemovalFails(t *testing.T) {
	repo := newFakeRepo()
	guard := newFakeGuard()
	objects := newFakeObjectStore()
	service := NewService(repo, guard, objects, "gotask", 0)

	owner, taskID := uuid.New(), uuid.New()
	guard.tasks[taskID] = owner
	meta, err := service.Upload(context.Background(), owner, taskID, buildFileHeader(t, "file", "notes.txt", "text/plain", []byte("keep me")))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}

	objects.removeErr = errors.New("minio unavailable")
	if err := service.Delete(context.Background(), owner, taskID, meta.ID); err == nil {
		t.Fatalf("expected Delete to fail while object storage is down")
	}
	if _, err := repo.GetAttachment(context.Background(), taskID, meta.ID); err != nil {
		t.Fatalf("expected metadata to survive a failed removal, got %v", err)
	}

	objects.removeErr = nil
	if err := service.Delete(context.Background(), owner, taskID, meta.ID); err != nil {
		t.Fatalf("retry Delete returned error: %v", err)
	}
	if len(objects.objects) != 0 || len(repo.records) != 0 {
		t.Fatalf("expected object and metadata removed after retry")
	}
}

func TestDeleteForTaskRemovesEverything(t *testing.T) {
	repo := newFakeRepo()
	guard := newFakeGuard()
	objects := newFakeObjectStore()
	service := NewService(repo, guard, objects, "gotask", 0)

	owner, taskID, otherTask := uuid.New(), uuid.New(), uuid.New()
	guard.tasks[taskID] = owner
	guard.tasks[otherTask] = owner
	for _, id := range []uuid.UUID{taskID, taskID, otherTask} {
		if _, err := service.Upload(context.Background(), owner, id, buildFileHeader(t, "file", "f.txt", "text/plain", []byte("x"))); err != nil {
			t.Fatalf("Upload returned error: %v", err)
		}
	}

	if err := service.DeleteForTask(context.Background(), taskID); err != nil {
		t.Fatalf("DeleteForTask returned error: %v", err)
	}
	if len(objects.objects) != 1 || len(repo.records) != 1 {
		t.Fatalf("expected only the other task's attachment to remain, got %d objects / %d rows", len(objects.objects), len(repo.records))
	}
}

func TestListReturnsEmptySlice(t *testing.T) {
	guard := newFakeGuard()
	service := NewService(newFakeRepo(), guard, newFakeObjectStore(), "gotask", 0)
	owner, taskID := uuid.New(), uuid.New()
	guard.tasks[taskID] = owner

	list, err := service.List(context.Background(), owner, taskID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", list)
	}
}

// --- helpers & fakes ---

func buildFileHeader(t *testing.T, fieldName, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + fieldName + `"; filename="` + filename + `"`}
	if contentType != "" {
		header["Content-Type"] = []string{contentType}
	}
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart error: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(int64(len(content)) + 1024); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}

	return req.MultipartForm.File[fieldName][0]
}

type fakeGuard struct {
	tasks map[uuid.UUID]uuid.UUID
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{tasks: make(map[uuid.UUID]uuid.UUID)}
}

func (f *fakeGuard) Authorize(ctx context.Context, requesterID, taskID uuid.UUID) (task.Task, error) {
	owner, ok := f.tasks[taskID]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	if owner != requesterID {
		return task.Task{}, task.ErrForbidden
	}
	return task.Task{ID: taskID, UserID: owner}, nil
}

type fakeRepo struct {
	records map[uuid.UUID]Attachment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[uuid.UUID]Attachment)}
}

func (f *fakeRepo) CreateAttachment(ctx context.Context, a Attachment) (Attachment, error) {
	a.CreatedAt = time.Now()
	f.records[a.ID] = a
	return a, nil
}

func (f *fakeRepo) ListAttachments(ctx context.Context, taskID uuid.UUID) ([]Attachment, error) {
	var list []Attachment
	for _, a := range f.records {
		if a.TaskID == taskID {
			list = append(list, a)
		}
	}
	return list, nil
}

func (f *fakeRepo) GetAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) (Attachment, error) {
	a, ok := f.records[attachmentID]
	if !ok || a.TaskID != taskID {
		return Attachment{}, ErrAttachmentNotFound
	}
	return a, nil
}

func (f *fakeRepo) DeleteAttachment(ctx context.Context, taskID, attachmentID uuid.UUID) (Attachment, error) {
	a, err := f.GetAttachment(ctx, taskID, attachmentID)
	if err != nil {
		return Attachment{}, err
	}
	delete(f.records, attachmentID)
	return a, nil
}

func (f *fakeRepo) DeleteTaskAttachments(ctx context.Context, taskID uuid.UUID) error {
	for id, a := range f.records {
		if a.TaskID == taskID {
			delete(f.records, id)
		}
	}
	return nil
}

type fakeObjectStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	removeErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	f.objects[objectName] = data
	f.mu.Unlock()
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeObjectStore) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectName]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStore) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, objectName)
	return nil
}
