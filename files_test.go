package storefront_test

import (
	"errors"
	"testing"

	"github.com/xraph/storefront"
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/storage"
	"github.com/xraph/storefront/types"
)

func TestRecordUpload(t *testing.T) {
	uploader := storage.NewMemory()
	sf, ctx := newTestStorefront(t, storefront.WithUploader(uploader))

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	data := []byte("hello")
	f, err := sf.RecordUpload(ctx, user.ID, "notes.txt", "text/plain", data)
	if err != nil {
		t.Fatalf("record upload: %v", err)
	}
	if f.Size != int64(len(data)) {
		t.Errorf("expected size %d, got %d", len(data), f.Size)
	}
	if f.URL == "" {
		t.Error("expected a URL for the stored object")
	}

	stored, ok := uploader.Get(f.Key)
	if !ok {
		t.Fatalf("object %q not in storage", f.Key)
	}
	if string(stored) != "hello" {
		t.Errorf("stored bytes mismatch: %q", stored)
	}

	files, pag, err := sf.ListFiles(ctx, user.ID, types.Page{})
	if err != nil {
		t.Fatalf("list files: %v", err)
	}
	if len(files) != 1 || pag.TotalCount != 1 {
		t.Errorf("expected 1 file, got %d", pag.TotalCount)
	}
}

func TestRecordUploadWithoutUploader(t *testing.T) {
	sf, ctx := newTestStorefront(t)

	user, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	_, err = sf.RecordUpload(ctx, user.ID, "notes.txt", "text/plain", []byte("hello"))
	if !errors.Is(err, storefront.ErrUploaderNotSet) {
		t.Fatalf("expected ErrUploaderNotSet, got %v", err)
	}
}

func TestDeleteFile(t *testing.T) {
	uploader := storage.NewMemory()
	sf, ctx := newTestStorefront(t, storefront.WithUploader(uploader))

	owner, err := sf.CreateUser(ctx, "Ada", "ada@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	f, err := sf.RecordUpload(ctx, owner.ID, "notes.txt", "text/plain", []byte("hello"))
	if err != nil {
		t.Fatalf("record upload: %v", err)
	}

	// Only the owner can delete.
	if err := sf.DeleteFile(ctx, id.NewUserID(), f.ID); !errors.Is(err, storefront.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound for foreign delete, got %v", err)
	}

	if err := sf.DeleteFile(ctx, owner.ID, f.ID); err != nil {
		t.Fatalf("delete file: %v", err)
	}
	if _, ok := uploader.Get(f.Key); ok {
		t.Error("expected stored object to be removed")
	}
	if _, err := sf.GetFile(ctx, f.ID); !errors.Is(err, storefront.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound after delete, got %v", err)
	}
}
