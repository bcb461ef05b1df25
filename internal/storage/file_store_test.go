package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileStorePutGetDelete(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()

	body := "receipt bytes"
	if err := fs.Put(ctx, "rec-1/abc-receipt.pdf", strings.NewReader(body), int64(len(body)), "application/pdf"); err != nil {
		t.Fatalf("put: %v", err)
	}

	url, err := fs.GetURL(ctx, "rec-1/abc-receipt.pdf", time.Minute)
	if err != nil {
		t.Fatalf("get url: %v", err)
	}
	if !strings.HasPrefix(url, "file://") {
		t.Fatalf("url = %q, want file:// prefix", url)
	}
	data, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != body {
		t.Fatalf("stored body = %q, want %q", data, body)
	}

	if err := fs.Delete(ctx, "rec-1/abc-receipt.pdf"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting a missing object is not an error.
	if err := fs.Delete(ctx, "rec-1/abc-receipt.pdf"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestFileStoreFlattensTraversal(t *testing.T) {
	base := t.TempDir()
	fs, err := NewFileStore(base)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := fs.Put(context.Background(), "../../etc/passwd", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	// The object must land inside the base directory.
	if _, err := os.Stat(filepath.Join(base, "etc", "passwd")); err != nil {
		t.Fatalf("expected flattened path inside base dir: %v", err)
	}
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore("  "); err == nil {
		t.Fatal("expected error for blank base path")
	}
}
