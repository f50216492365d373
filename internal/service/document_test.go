package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"saha-erp/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDocumentStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewDocumentStore(storage.NewLocal(dir), 1, 64)

	name, err := store.Save(ctx, strings.NewReader("%PDF-1.4 hello"), "Marksheet.PDF")
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(name))
	assert.FileExists(t, filepath.Join(dir, name))

	doc, err := store.Open(ctx, name)
	require.NoError(t, err)
	body, err := io.ReadAll(doc.Body)
	require.NoError(t, doc.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 hello", string(body))
	assert.Equal(t, "application/pdf", doc.ContentType)

	require.NoError(t, store.Remove(ctx, name))
	_, err = store.Open(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDocumentStoreDropsUnsafeExtension(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(storage.NewLocal(t.TempDir()), 1, 64)

	for _, original := range []string{`a.pd"f`, "a.p df", "a.pdf;x=1", "a.thisistoolong", "noext"} {
		name, err := store.Save(ctx, strings.NewReader("%PDF-1.4 hello"), original)
		require.NoError(t, err, original)
		assert.Empty(t, filepath.Ext(name), original)
		assert.NotContains(t, name, `"`, original)

		doc, err := store.Open(ctx, name)
		require.NoError(t, err, original)
		require.NoError(t, doc.Body.Close())
		assert.Equal(t, "application/octet-stream", doc.ContentType)
	}

	name, err := store.Save(ctx, strings.NewReader("hello"), "notes.TXT")
	require.NoError(t, err)
	assert.Equal(t, ".txt", filepath.Ext(name))
}

func TestDocumentStoreFitsLargeImages(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewDocumentStore(storage.NewLocal(dir), 1, 64)

	small, err := store.Save(ctx, bytes.NewReader(pngOf(t, 40, 20)), "small.png")
	require.NoError(t, err)
	large, err := store.Save(ctx, bytes.NewReader(pngOf(t, 200, 100)), "large.PNG")
	require.NoError(t, err)

	sizeOf := func(name string) image.Point {
		doc, err := store.Open(ctx, name)
		require.NoError(t, err)
		defer doc.Body.Close()
		cfg, err := png.DecodeConfig(doc.Body)
		require.NoError(t, err)
		return image.Pt(cfg.Width, cfg.Height)
	}
	assert.Equal(t, image.Pt(40, 20), sizeOf(small))
	assert.Equal(t, image.Pt(64, 32), sizeOf(large))
}

func TestDocumentStoreRejects(t *testing.T) {
	ctx := context.Background()
	store := NewDocumentStore(storage.NewLocal(t.TempDir()), 1, 64)
	var verr *ValidationError

	_, err := store.Save(ctx, bytes.NewReader(make([]byte, 1<<20+1)), "big.pdf")
	assert.ErrorAs(t, err, &verr)

	_, err = store.Save(ctx, strings.NewReader(""), "empty.pdf")
	assert.ErrorAs(t, err, &verr)

	_, err = store.Save(ctx, strings.NewReader("not an image"), "photo.jpg")
	assert.ErrorAs(t, err, &verr)

	_, err = store.Open(ctx, "../secret.txt")
	assert.ErrorAs(t, err, &verr)
}
