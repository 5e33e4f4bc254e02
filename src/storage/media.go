// Package storage persists uploaded binaries and hands back the stable
// relative URL recorded on the owning entity.
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Media kinds, one directory each under the media root.
const (
	KindArticles    = "articles"
	KindMarketplace = "marketplace"
	KindMessages    = "messages"
	KindProfiles    = "profiles"
)

type MediaStore interface {
	// Save stores the upload under the given kind and returns its relative
	// URL path (e.g. /media/articles/<name>).
	Save(kind string, file *multipart.FileHeader) (string, error)
}

var imageMimes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// LocalStore writes uploads to a directory tree on disk.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	for _, kind := range []string{KindArticles, KindMarketplace, KindMessages, KindProfiles} {
		if err := os.MkdirAll(filepath.Join(root, kind), 0o755); err != nil {
			return nil, err
		}
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Save(kind string, file *multipart.FileHeader) (string, error) {
	// Message attachments may be documents; every other kind is image-only.
	if kind != KindMessages {
		contentType := file.Header.Get("Content-Type")
		if !imageMimes[contentType] {
			return "", fmt.Errorf("invalid file type %q, only jpeg, png, webp and gif are allowed", contentType)
		}
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.root, kind, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/media/" + kind + "/" + name, nil
}
