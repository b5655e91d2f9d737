package page

import (
	"context"
	"io"
	"time"

	"pagemaker/common"
)

// Template is persisted page: structured modules plus bookkeeping.
type Template struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Content     Modules           `json:"content"`
	TargetArea  common.TargetArea `json:"target_area"`
	OwnerID     string            `json:"owner_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	ModuleCount int               `json:"module_count"`
}

// PageService loads and stores page templates.
type PageService interface {
	GetPage(ctx context.Context, id string) (*Template, error)
	// SavePage creates or updates template returning stored state.
	SavePage(ctx context.Context, t *Template) (*Template, error)
}

// ProgressFunc receives number of bytes consumed so far and expected total,
// total is negative when unknown.
type ProgressFunc func(done, total int64)

// Upload describes stored image.
type Upload struct {
	URL    string `json:"url"`
	Name   string `json:"name"`
	MIME   string `json:"mime"`
	Size   int64  `json:"size"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ImageService stores uploaded images.
type ImageService interface {
	UploadImage(ctx context.Context, name string, r io.Reader, size int64, onProgress ProgressFunc) (*Upload, error)
}
