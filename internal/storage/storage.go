package storage

import (
	"context"
	"io"
	"time"
)

// Uploader stores an object and returns the reference saved on the candidate.
type Uploader interface {
	Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (storedPath string, err error)
}

// Signer issues a short-lived download URL for a stored object.
type Signer interface {
	SignedGetURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}
