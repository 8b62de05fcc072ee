// Package storage keeps uploaded post images and hands out references of
// the form posts/<name>.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// Prefix scopes every stored image
const Prefix = "posts/"

var (
	ErrNotFound   = errors.New("image not found")
	ErrInvalidRef = errors.New("invalid image reference")
)

// ImageStorage stores post images
type ImageStorage interface {
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Delete(ctx context.Context, ref string) error
	List(ctx context.Context) ([]Image, error)
}

// Image is one stored file
type Image struct {
	Ref     string
	SavedAt time.Time
}

// newRef builds a fresh, collision-free reference with the given extension
func newRef(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return Prefix + uuid.NewString() + ext
}

// checkRef rejects references that would escape the posts/ scope
func checkRef(ref string) error {
	if !strings.HasPrefix(ref, Prefix) {
		return ErrInvalidRef
	}
	name := strings.TrimPrefix(ref, Prefix)
	if name == "" || path.Base(name) != name || name == "." || name == ".." {
		return ErrInvalidRef
	}
	return nil
}

// Open returns the storage selected by driver: "fs" keeps files under
// root, "gridfs" keeps them in db
func Open(driver, root string, db *mongo.Database) (ImageStorage, error) {
	switch driver {
	case "fs":
		return NewFileSystemStorage(root)
	case "gridfs":
		if db == nil {
			return nil, errors.New("gridfs storage needs a MongoDB connection")
		}
		return NewGridFSStorage(db)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}
