package client

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"
	"time"
)

// StorageClient defines the interface for object storage operations
type StorageClient interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	GetPublicURL(key string) string
}

// ExportKey is the object key for a rendered export.
func ExportKey(prefix, id, ext string) string {
	return path.Join(prefix, id+"."+ext)
}

// Object is a stored blob held by MemoryStorage.
type Object struct {
	Data        []byte
	ContentType string
	// ExpiresAt is zero for objects that never expire.
	ExpiresAt time.Time
}

func (o Object) expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && !now.Before(o.ExpiresAt)
}

// MemoryStorage keeps objects in process. It backs exports when R2 is not
// configured, with the server answering baseURL itself, and in tests.
// Objects older than ttl are dropped on the next upload.
type MemoryStorage struct {
	baseURL string
	ttl     time.Duration
	now     func() time.Time

	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryStorage returns storage whose URLs live under baseURL. A ttl of
// zero keeps objects until they are deleted.
func NewMemoryStorage(baseURL string, ttl time.Duration) *MemoryStorage {
	return &MemoryStorage{
		baseURL: baseURL,
		ttl:     ttl,
		now:     time.Now,
		objects: make(map[string]Object),
	}
}

func (m *MemoryStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload body: %w", err)
	}
	now := m.now()
	obj := Object{Data: data, ContentType: contentType}
	if m.ttl > 0 {
		obj.ExpiresAt = now.Add(m.ttl)
	}

	m.mu.Lock()
	for k, o := range m.objects {
		if o.expired(now) {
			delete(m.objects, k)
		}
	}
	m.objects[key] = obj
	m.mu.Unlock()
	return m.GetPublicURL(key), nil
}

func (m *MemoryStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// GetSignedURL never outlives the object itself.
func (m *MemoryStorage) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	obj, ok := m.Get(key)
	if !ok {
		return "", fmt.Errorf("object not found: %s", key)
	}
	expires := m.now().Add(expiry)
	if !obj.ExpiresAt.IsZero() && obj.ExpiresAt.Before(expires) {
		expires = obj.ExpiresAt
	}
	return fmt.Sprintf("%s?expires=%d", m.GetPublicURL(key), expires.Unix()), nil
}

func (m *MemoryStorage) GetPublicURL(key string) string {
	return fmt.Sprintf("%s/%s", m.baseURL, key)
}

// Get returns a stored object that has not expired.
func (m *MemoryStorage) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok || obj.expired(m.now()) {
		return Object{}, false
	}
	return obj, true
}

// Len is the number of retained objects, expired ones included until the
// next upload sweeps them.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
