// Package gcs stores product images in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/delivery-marketplace/pkg/helpers"
)

type ImageStorage struct {
	Client *storage.Client
	Bucket string
}

func NewImageStorage(client *storage.Client, bucket string) *ImageStorage {
	return &ImageStorage{Client: client, Bucket: bucket}
}

// Upload writes r to objectPath and returns the object's public URL.
func (s *ImageStorage) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, contentType, r)
}
