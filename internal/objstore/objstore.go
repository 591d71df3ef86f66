package objstore

import "context"

// Uploader stores a blob and returns a public retrieval URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
