package application

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
)

// Clock returns the current time; tests pin it.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// ProductIndex is the product search index.
type ProductIndex interface {
	Index(ctx context.Context, p *entity.Product) error
	Remove(ctx context.Context, ids ...string) error
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// ImageStorage uploads image objects and returns their public URL.
type ImageStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// Publisher puts a JSON message on the outbound queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

var errImageStorageDisabled = errors.New("image storage not configured")
