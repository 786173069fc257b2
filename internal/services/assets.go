package services

import (
	"bytes"
	"errors"
	"image/jpeg"
	"io/fs"
	"os"
	"path/filepath"
)

// AssetStore keeps completion photos on local disk, one JPEG per post,
// addressed by a generated id.
type AssetStore struct {
	dir string
}

func NewAssetStore() *AssetStore {
	dir := os.Getenv("IMAGE_UPLOAD_DIR")
	if dir == "" {
		dir = "./data/images"
	}
	return &AssetStore{dir: dir}
}

func NewAssetStoreAt(dir string) *AssetStore {
	return &AssetStore{dir: dir}
}

func (s *AssetStore) Save(id string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.Path(id), data, 0o644)
}

// Delete removes the asset and reports whether it existed. A missing file is
// not an error; callers treat deletion as best-effort cleanup.
func (s *AssetStore) Delete(id string) (bool, error) {
	err := os.Remove(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *AssetStore) Path(id string) string {
	return filepath.Join(s.dir, id+".jpg")
}

// ValidJPEG reports whether data parses as a JPEG header. Uploads are
// rejected before they reach the rating agent or disk otherwise.
func ValidJPEG(data []byte) bool {
	_, err := jpeg.DecodeConfig(bytes.NewReader(data))
	return err == nil
}
