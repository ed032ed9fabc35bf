package storefront

import (
	"context"
	"fmt"
	"path"

	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/metafile"
	"github.com/xraph/storefront/types"
)

// RecordUpload stores the given bytes through the configured uploader
// and persists a metadata row pointing at them.
func (sf *Storefront) RecordUpload(ctx context.Context, ownerID id.UserID, name, contentType string, data []byte) (*metafile.File, error) {
	if sf.uploader == nil {
		return nil, fmt.Errorf("record upload: %w", ErrUploaderNotSet)
	}
	if name == "" {
		return nil, ValidationError{Field: "name", Message: "is required"}
	}

	fileID := id.NewMetaFileID()
	key := path.Join("uploads", ownerID.String(), fileID.String()+path.Ext(name))

	url, err := sf.uploader.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("record upload: %w", err)
	}

	f := &metafile.File{
		Entity:      types.NewEntity(),
		ID:          fileID,
		OwnerID:     ownerID,
		Name:        name,
		Key:         key,
		URL:         url,
		Size:        int64(len(data)),
		ContentType: contentType,
	}
	if err := sf.store.CreateMetaFile(ctx, f); err != nil {
		// The bytes are orphaned if this cleanup fails; the original
		// error is the one worth surfacing.
		_ = sf.uploader.Delete(ctx, key)
		return nil, fmt.Errorf("record upload: %w", err)
	}

	sf.plugins.EmitFileUploaded(ctx, f)

	sf.logger.Info("file uploaded",
		"file_id", f.ID.String(),
		"owner_id", ownerID.String(),
		"size", f.Size,
	)

	return f, nil
}

// GetFile retrieves an upload's metadata row.
func (sf *Storefront) GetFile(ctx context.Context, fileID id.MetaFileID) (*metafile.File, error) {
	return sf.store.GetMetaFile(ctx, fileID)
}

// ListFiles returns one page of a user's uploads, newest first.
func (sf *Storefront) ListFiles(ctx context.Context, ownerID id.UserID, page types.Page) ([]*metafile.File, types.Pagination, error) {
	files, total, err := sf.store.ListMetaFiles(ctx, ownerID, metafile.ListOpts{
		Limit:  page.Limit(),
		Offset: page.Offset(),
	})
	if err != nil {
		return nil, types.Pagination{}, fmt.Errorf("list files: %w", err)
	}
	return files, types.NewPagination(page, total), nil
}

// DeleteFile removes an upload's metadata row and its stored bytes.
func (sf *Storefront) DeleteFile(ctx context.Context, ownerID id.UserID, fileID id.MetaFileID) error {
	f, err := sf.store.GetMetaFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if f.OwnerID != ownerID {
		return fmt.Errorf("delete file: %w", ErrFileNotFound)
	}

	if err := sf.store.DeleteMetaFile(ctx, ownerID, fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	if sf.uploader != nil {
		if err := sf.uploader.Delete(ctx, f.Key); err != nil {
			sf.logger.Warn("failed to delete stored object",
				"key", f.Key,
				"error", err,
			)
		}
	}

	return nil
}
