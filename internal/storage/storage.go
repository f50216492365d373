// Package storage keeps uploaded files on local disk or in an Aliyun OSS bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"saha-erp/internal/config"
)

// ErrNotExist is returned by Open when no object is stored under the key.
var ErrNotExist = errors.New("object does not exist")

// ErrInvalidKey rejects keys that are empty or contain a path separator.
var ErrInvalidKey = errors.New("invalid object key")

// Blobs stores opaque objects under flat keys.
type Blobs interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New returns the backend selected by uploads.driver.
func New(cfg config.UploadsConfig) (Blobs, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.Dir), nil
	case "oss":
		return NewOSS(cfg.OSS)
	default:
		return nil, fmt.Errorf("unsupported uploads driver %q", cfg.Driver)
	}
}
