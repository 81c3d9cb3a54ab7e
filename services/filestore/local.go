package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core"
)

type localStore struct {
	root string
}

var _ core.FileStore = (*localStore)(nil)

// NewLocalStore writes uploads under a directory on disk; it backs dev and
// test environments where no B2 credentials exist.
func NewLocalStore(root string) (core.FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload dir")
	}
	return &localStore{root: root}, nil
}

func (s *localStore) Store(_ context.Context, name, contentType string, r io.Reader) (core.StoredFile, error) {
	path := filepath.Join(s.root, filepath.Base(name))
	f, err := os.Create(path)
	if err != nil {
		return core.StoredFile{}, errors.Wrap(err, "creating upload file")
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return core.StoredFile{}, errors.Wrap(err, "writing upload file")
	}
	return core.StoredFile{
		Name:        name,
		ContentType: contentType,
		URL:         "file://" + path,
	}, nil
}
