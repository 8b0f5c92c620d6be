package store

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openTestBlobStore(t *testing.T) *BlobStore {
	t.Helper()
	b, err := OpenBlobStore(filepath.Join(t.TempDir(), "blobs.db"))
	if err != nil {
		t.Fatalf("OpenBlobStore() error = %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBlobStore_PutGetDelete(t *testing.T) {
	b := openTestBlobStore(t)
	data := []byte("%PDF-1.7 fake bytes")

	if err := b.Put("pdf-1", data); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, ok, err := b.Get("pdf-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("Expected blob to exist")
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get() returned wrong bytes")
	}

	if err := b.Delete("pdf-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, ok, err = b.Get("pdf-1")
	if err != nil {
		t.Fatalf("Get() after delete error = %v", err)
	}
	if ok {
		t.Error("Blob should be gone after Delete")
	}
}

func TestBlobStore_GetMissingIsNotError(t *testing.T) {
	b := openTestBlobStore(t)

	data, ok, err := b.Get("pdf-nope")
	if err != nil {
		t.Fatalf("Missing key must not error, got %v", err)
	}
	if ok || data != nil {
		t.Error("Missing key must report absent")
	}
}

func TestBlobStore_PutReplaces(t *testing.T) {
	b := openTestBlobStore(t)

	if err := b.Put("pdf-1", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := b.Put("pdf-1", []byte("new longer value")); err != nil {
		t.Fatal(err)
	}

	got, ok, _ := b.Get("pdf-1")
	if !ok || string(got) != "new longer value" {
		t.Errorf("Put must replace prior value, got %q", got)
	}

	size, ok, err := b.Size("pdf-1")
	if err != nil || !ok {
		t.Fatalf("Size() = %v, %v", ok, err)
	}
	if size != int64(len("new longer value")) {
		t.Errorf("Size() = %d", size)
	}
}

func TestBlobStore_DeleteMissingIsNoop(t *testing.T) {
	b := openTestBlobStore(t)
	if err := b.Delete("pdf-nope"); err != nil {
		t.Errorf("Delete of missing key must be a no-op, got %v", err)
	}
}

func TestBlobStore_TotalSize(t *testing.T) {
	b := openTestBlobStore(t)

	total, err := b.TotalSize()
	if err != nil || total != 0 {
		t.Fatalf("Empty store TotalSize() = %d, %v", total, err)
	}

	_ = b.Put("pdf-1", make([]byte, 100))
	_ = b.Put("pdf-2", make([]byte, 50))

	total, err = b.TotalSize()
	if err != nil {
		t.Fatal(err)
	}
	if total != 150 {
		t.Errorf("TotalSize() = %d, want 150", total)
	}
}
