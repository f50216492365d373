package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"saha-erp/internal/config"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSS keeps objects in an Aliyun OSS bucket, optionally under a key prefix.
type OSS struct {
	bucket *oss.Bucket
	prefix string
}

func NewOSS(cfg config.OSSConfig) (*OSS, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("uploads.oss.endpoint and uploads.oss.bucket are required")
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}
	bucket, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %s: %w", cfg.Bucket, err)
	}
	return &OSS{bucket: bucket, prefix: strings.Trim(cfg.Prefix, "/")}, nil
}

func (o *OSS) objectKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "/") {
		return "", ErrInvalidKey
	}
	if o.prefix == "" {
		return key, nil
	}
	return o.prefix + "/" + key, nil
}

func (o *OSS) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	k, err := o.objectKey(key)
	if err != nil {
		return err
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentDisposition("attachment"),
	}
	if contentType != "" {
		opts = append(opts, oss.ContentType(contentType))
	}
	if err := o.bucket.PutObject(k, r, opts...); err != nil {
		return fmt.Errorf("put %s: %w", k, err)
	}
	return nil
}

func (o *OSS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	k, err := o.objectKey(key)
	if err != nil {
		return nil, err
	}
	body, err := o.bucket.GetObject(k, oss.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("get %s: %w", k, err)
	}
	return body, nil
}

func (o *OSS) Delete(ctx context.Context, key string) error {
	k, err := o.objectKey(key)
	if err != nil {
		return err
	}
	if err := o.bucket.DeleteObject(k, oss.WithContext(ctx)); err != nil && !isNotFound(err) {
		return fmt.Errorf("delete %s: %w", k, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var se oss.ServiceError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
