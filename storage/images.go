package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"pagemaker/page"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image type")
	ErrImageTooLarge    = errors.New("image is too large")
)

// marketplace pages accept only these.
var acceptedImages = []string{"jpg", "png", "gif"}

// ImageStore writes uploaded images into directory served under URL prefix.
type ImageStore struct {
	dir     string
	url     string
	maxSize int64
	log     *zap.Logger
}

func NewImageStore(dir, urlPrefix string, maxSize int64, log *zap.Logger) (*ImageStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create images directory '%s': %w", dir, err)
	}
	return &ImageStore{
		dir:     dir,
		url:     "/" + strings.Trim(urlPrefix, "/"),
		maxSize: maxSize,
		log:     log.Named("images"),
	}, nil
}

func (s *ImageStore) Dir() string {
	return s.dir
}

// progressReader reports consumed bytes after every read.
type progressReader struct {
	r     io.Reader
	done  int64
	total int64
	fn    page.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.done += int64(n)
	if n > 0 && p.fn != nil {
		p.fn(p.done, p.total)
	}
	return n, err
}

// UploadImage stores image read from r. Size is expected length, negative
// when unknown. Only JPEG, PNG and GIF images not exceeding size limit are
// accepted.
func (s *ImageStore) UploadImage(ctx context.Context, name string, r io.Reader, size int64, onProgress page.ProgressFunc) (*page.Upload, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return nil, fmt.Errorf("%s: %d bytes: %w", name, size, ErrImageTooLarge)
	}
	if size < 0 {
		size = -1
	}

	limit := s.maxSize
	if limit <= 0 {
		limit = 1<<63 - 2
	}
	pr := &progressReader{r: io.LimitReader(r, limit+1), total: size, fn: onProgress}
	data, err := io.ReadAll(pr)
	if err != nil {
		return nil, fmt.Errorf("unable to read image '%s': %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s: %w", name, ErrImageTooLarge)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kind, err := filetype.Image(data)
	if err != nil || kind == filetype.Unknown {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedImage)
	}
	accepted := false
	for _, ext := range acceptedImages {
		if filetype.Is(data, ext) {
			accepted = true
			break
		}
	}
	if !accepted {
		return nil, fmt.Errorf("%s (%s): %w", name, kind.MIME.Value, ErrUnsupportedImage)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		s.log.Warn("Unable to decode image", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", name, ErrUnsupportedImage, err)
	}

	file := storedName(name, kind.Extension)
	if err := os.WriteFile(filepath.Join(s.dir, file), data, 0644); err != nil {
		return nil, fmt.Errorf("unable to store image '%s': %w", name, err)
	}

	up := &page.Upload{
		URL:    path.Join(s.url, file),
		Name:   name,
		MIME:   kind.MIME.Value,
		Size:   int64(len(data)),
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}
	s.log.Debug("Image stored", zap.String("url", up.URL), zap.Int("width", up.Width), zap.Int("height", up.Height))
	return up, nil
}

// storedName makes unique readable file name from uploaded one.
func storedName(name, ext string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	s := slug.Make(base)
	if s == "" {
		s = "image"
	}
	return fmt.Sprintf("%s-%s.%s", s, uuid.NewString()[:8], ext)
}
