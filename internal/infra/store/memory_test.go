package store

import (
	"context"
	"errors"
	"testing"

	"provd/internal/domain"
)

func TestMemoryPutGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	record := domain.ManifestRecord{ManifestID: "id-1", BlobName: "id-1.jpg"}

	if err := m.Put(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := m.Get(ctx, "id-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BlobName != "id-1.jpg" {
		t.Errorf("blob name = %q", got.BlobName)
	}

	ok, err := m.Exists(ctx, "id-1")
	if err != nil || !ok {
		t.Errorf("exists = %v, %v", ok, err)
	}
}

func TestMemoryPutRejectsDuplicate(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	record := domain.ManifestRecord{ManifestID: "id-1"}

	if err := m.Put(ctx, record); err != nil {
		t.Fatalf("put: %v", err)
	}
	err := m.Put(ctx, record)
	if !errors.Is(err, domain.ErrDuplicateRecord) {
		t.Fatalf("expected ErrDuplicateRecord, got %v", err)
	}
}

func TestMemoryPutRequiresID(t *testing.T) {
	err := NewMemory().Put(context.Background(), domain.ManifestRecord{})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMemoryGetNotFound(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if err := m.Put(ctx, domain.ManifestRecord{ManifestID: "id-1", BlobName: "a"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	first, _ := m.Get(ctx, "id-1")
	first.BlobName = "mutated"
	second, _ := m.Get(ctx, "id-1")
	if second.BlobName != "a" {
		t.Error("stored record mutated through returned pointer")
	}
}
