package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"saha-erp/internal/storage"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// DocumentStore keeps uploaded student documents in a blob backend, addressed
// by generated name only.
type DocumentStore struct {
	blobs      storage.Blobs
	maxBytes   int64
	maxImagePx int
}

// Document is an opened stored file. The caller closes Body.
type Document struct {
	Name        string
	ContentType string
	Body        io.ReadCloser
}

func NewDocumentStore(blobs storage.Blobs, maxSizeMB, maxImagePx int) *DocumentStore {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &DocumentStore{blobs: blobs, maxBytes: int64(maxSizeMB) << 20, maxImagePx: maxImagePx}
}

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// storedExt keeps the client's extension only when it is plain lowercase
// alphanumerics, so generated names never need escaping.
func storedExt(originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !safeExt.MatchString(ext) {
		return ""
	}
	return ext
}

func isImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// fitImage shrinks images whose longer side exceeds maxPx, keeping the format.
func fitImage(data []byte, originalName string, maxPx int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if maxPx <= 0 || (b.Dx() <= maxPx && b.Dy() <= maxPx) {
		return data, nil
	}
	format, err := imaging.FormatFromFilename(originalName)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Fit(img, maxPx, maxPx, imaging.Lanczos), format, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save stores r as <uuid><ext> and returns that name.
func (d *DocumentStore) Save(ctx context.Context, r io.Reader, originalName string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, d.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	if int64(len(data)) > d.maxBytes {
		return "", invalid("file", fmt.Sprintf("exceeds %d MB", d.maxBytes>>20))
	}
	if len(data) == 0 {
		return "", invalid("file", "is empty")
	}

	ext := storedExt(originalName)
	if isImageExt(ext) {
		if data, err = fitImage(data, originalName, d.maxImagePx); err != nil {
			return "", invalid("file", "is not a readable image")
		}
	}

	name := uuid.New().String() + ext
	if err := d.blobs.Put(ctx, name, bytes.NewReader(data), http.DetectContentType(data)); err != nil {
		return "", fmt.Errorf("store document: %w", err)
	}
	return name, nil
}

// Open returns the stored document. A missing object is ErrNotFound.
func (d *DocumentStore) Open(ctx context.Context, name string) (*Document, error) {
	body, err := d.blobs.Open(ctx, name)
	switch {
	case errors.Is(err, storage.ErrInvalidKey):
		return nil, invalid("file", "invalid name")
	case errors.Is(err, storage.ErrNotExist):
		return nil, notFound("document", name)
	case err != nil:
		return nil, fmt.Errorf("open document: %w", err)
	}
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &Document{Name: name, ContentType: ct, Body: body}, nil
}

// Remove deletes a stored document. A missing object is not an error.
func (d *DocumentStore) Remove(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	return d.blobs.Delete(ctx, name)
}
