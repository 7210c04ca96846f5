package blobfs

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"provd/internal/domain"
)

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	path, err := store.Write(ctx, "abc.jpg", []byte("payload"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(dir, "abc.jpg") {
		t.Errorf("path = %q", path)
	}

	data, err := store.Read(ctx, "abc.jpg")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(data, []byte("payload")) {
		t.Errorf("data = %q", data)
	}
}

func TestReadMissingBlob(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = store.Read(context.Background(), "missing.jpg")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRejectsPathTraversalNames(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	for _, name := range []string{"", "../escape.jpg", "a/b.jpg", `a\b.jpg`, "..jpg"} {
		if _, err := store.Write(ctx, name, []byte("x")); err == nil {
			t.Errorf("write accepted name %q", name)
		}
		if _, err := store.Read(ctx, name); err == nil {
			t.Errorf("read accepted name %q", name)
		}
	}
}

func TestNewRequiresDirectory(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
