// Package storage abstracts where evidence blobs live. The bucket (or
// directory) is never served by the HTTP layer; downloads always go through
// the admin-gated evidence endpoint.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotExist = errors.New("blob does not exist")

type BlobInfo struct {
	Name string
	Size int64
}

type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Stat(ctx context.Context, name string) (BlobInfo, error)
	Remove(ctx context.Context, name string) error
}
