package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStorage keeps images in a MongoDB GridFS bucket; the file name is
// the reference
type GridFSStorage struct {
	bucket *gridfs.Bucket
}

func NewGridFSStorage(db *mongo.Database) (*GridFSStorage, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("posts"))
	if err != nil {
		return nil, err
	}
	return &GridFSStorage{bucket: bucket}, nil
}

func (s *GridFSStorage) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	ref := newRef(ext)
	stream, err := s.bucket.OpenUploadStream(ref)
	if err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(deadline)
	}
	if _, err := io.Copy(stream, r); err != nil {
		_ = stream.Abort()
		return "", err
	}
	return ref, stream.Close()
}

func (s *GridFSStorage) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := checkRef(ref); err != nil {
		return nil, err
	}
	stream, err := s.bucket.OpenDownloadStreamByName(ref)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(deadline)
	}
	return stream, nil
}

func (s *GridFSStorage) Delete(ctx context.Context, ref string) error {
	if err := checkRef(ref); err != nil {
		return err
	}
	var file struct {
		ID any `bson:"_id"`
	}
	err := s.bucket.GetFilesCollection().FindOne(ctx, bson.M{"filename": ref}).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return s.bucket.DeleteContext(ctx, file.ID)
}

func (s *GridFSStorage) List(ctx context.Context) ([]Image, error) {
	cursor, err := s.bucket.FindContext(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []struct {
		Name       string    `bson:"filename"`
		UploadDate time.Time `bson:"uploadDate"`
	}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	images := make([]Image, 0, len(files))
	for _, f := range files {
		images = append(images, Image{Ref: f.Name, SavedAt: f.UploadDate})
	}
	return images, nil
}
