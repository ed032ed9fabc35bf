// Package metafile tracks metadata for user uploads stored in external
// object storage.
package metafile

import (
	"github.com/xraph/storefront/id"
	"github.com/xraph/storefront/types"
)

// File is one upload record. The bytes live in object storage; only the
// metadata and public URL are persisted here.
type File struct {
	types.Entity
	ID          id.MetaFileID `json:"id"`
	OwnerID     id.UserID     `json:"owner_id"`
	Name        string        `json:"name"`
	Key         string        `json:"key"`
	URL         string        `json:"url"`
	Size        int64         `json:"size"`
	ContentType string        `json:"content_type"`
}
