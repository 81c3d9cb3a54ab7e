package filestore

import (
	"context"
	"io"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core"
)

type b2Store struct {
	bucket *b2.Bucket
}

var _ core.FileStore = (*b2Store)(nil)

// NewB2Store connects to the Backblaze B2 bucket configured for uploads.
func NewB2Store(ctx context.Context, conf *core.Config) (core.FileStore, error) {
	client, err := b2.NewClient(ctx, conf.B2.AccountID, conf.B2.AppKey)
	if err != nil {
		return nil, errors.Wrap(err, "creating b2 client")
	}
	bucket, err := client.Bucket(ctx, conf.B2.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, "getting b2 bucket")
	}
	return &b2Store{bucket: bucket}, nil
}

func (s *b2Store) Store(ctx context.Context, name, contentType string, r io.Reader) (core.StoredFile, error) {
	obj := s.bucket.Object(name)
	w := obj.NewWriter(ctx)
	w.ConcurrentUploads = 1

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return core.StoredFile{}, errors.Wrap(err, "writing b2 object")
	}
	if err := w.Close(); err != nil {
		return core.StoredFile{}, errors.Wrap(err, "closing b2 writer")
	}

	return core.StoredFile{
		Name:        name,
		ContentType: contentType,
		URL:         obj.URL(),
	}, nil
}
