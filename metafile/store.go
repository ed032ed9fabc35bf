package metafile

import (
	"context"

	"github.com/xraph/storefront/id"
)

type Store interface {
	CreateMetaFile(ctx context.Context, f *File) error
	GetMetaFile(ctx context.Context, fileID id.MetaFileID) (*File, error)
	ListMetaFiles(ctx context.Context, ownerID id.UserID, opts ListOpts) ([]*File, int, error)
	DeleteMetaFile(ctx context.Context, ownerID id.UserID, fileID id.MetaFileID) error
}

type ListOpts struct {
	Limit  int
	Offset int
}
