package local

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"jobtracker-backend/internal/shared/storage/object"
)

func TestSaveOpenDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	base := filepath.Join(t.TempDir(), "uploads")
	store := New(base)

	size, mimeType, err := store.Save(ctx, "1700000000000-abcd1234-resume.pdf", strings.NewReader("%PDF-1.4 hello"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len("%PDF-1.4 hello")) {
		t.Fatalf("expected size %d, got %d", len("%PDF-1.4 hello"), size)
	}
	if mimeType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", mimeType)
	}

	rc, err := store.Open(ctx, "1700000000000-abcd1234-resume.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "%PDF-1.4 hello" {
		t.Fatalf("unexpected content %q", data)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != "1700000000000-abcd1234-resume.pdf" {
		t.Fatalf("unexpected listing: %+v", infos)
	}

	if err := store.Delete(ctx, "1700000000000-abcd1234-resume.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "1700000000000-abcd1234-resume.pdf"); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
	if _, err := store.Open(ctx, "1700000000000-abcd1234-resume.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSaveRefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	if _, _, err := store.Save(ctx, "same.txt", strings.NewReader("one")); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if _, _, err := store.Save(ctx, "same.txt", strings.NewReader("two")); err == nil {
		t.Fatalf("expected second Save on the same key to fail")
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	for _, key := range []string{"../escape.txt", "/abs.txt", ""} {
		if _, _, err := store.Save(ctx, key, strings.NewReader("x")); err == nil {
			t.Fatalf("expected Save(%q) to fail", key)
		}
		if _, err := store.Open(ctx, key); err == nil {
			t.Fatalf("expected Open(%q) to fail", key)
		}
	}
}

func TestListMissingRootIsEmpty(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "never-created"))
	infos, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("expected no objects, got %d", len(infos))
	}
}
