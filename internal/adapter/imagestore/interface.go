// Package imagestore persists uploaded attachment images in object storage.
package imagestore

import "context"

// MaxUploadBytes is the size ceiling for one uploaded image.
const MaxUploadBytes = 10 << 20

// Store writes image bytes to durable storage and returns a URL the
// extraction capability can fetch.
type Store interface {
	Upload(ctx context.Context, content []byte, contentType, filename string) (string, error)
}

// Ensure both implementations satisfy the interface.
var (
	_ Store = (*MinioStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
