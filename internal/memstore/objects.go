package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/minio/minio-go/v7"
)

// ObjectStore holds attachment blobs in memory with the minio client's method shapes.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewObjectStore returns an empty object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{objects: make(map[string][]byte)}
}

func objectKey(bucketName, objectName string) string {
	return bucketName + "/" + objectName
}

// PutObject reads reader fully and stores it.
func (o *ObjectStore) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("read object: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return minio.UploadInfo{}, err
	}

	o.mu.Lock()
	o.objects[objectKey(bucketName, objectName)] = data
	o.mu.Unlock()

	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: int64(len(data))}, nil
}

// GetObject returns a reader over a copy of the stored bytes.
func (o *ObjectStore) GetObject(_ context.Context, bucketName, objectName string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	o.mu.RLock()
	data, ok := o.objects[objectKey(bucketName, objectName)]
	o.mu.RUnlock()
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey", Key: objectName, BucketName: bucketName, Message: "The specified key does not exist."}
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(data))), nil
}

// RemoveObject deletes an object; removing a missing key is not an error, as with S3.
func (o *ObjectStore) RemoveObject(_ context.Context, bucketName, objectName string, _ minio.RemoveObjectOptions) error {
	o.mu.Lock()
	delete(o.objects, objectKey(bucketName, objectName))
	o.mu.Unlock()
	return nil
}

// Len reports how many objects are stored.
func (o *ObjectStore) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.objects)
}
