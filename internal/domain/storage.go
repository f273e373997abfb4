package domain

import "context"

// ObjectStorage stores uploaded objects and returns their public URL.
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, body []byte) (publicURL string, err error)
}
