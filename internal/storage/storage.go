// Package storage uploads registration files and hands back durable URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clubtoros/toros-backend/internal/config"
)

// ProgressFunc receives the transferred fraction of the current upload, in [0, 1].
type ProgressFunc func(fraction float64)

// Uploader stores files and returns their retrieval URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, destination, mimeType string, onProgress ProgressFunc) (string, error)
	Delete(ctx context.Context, url string) error
}

// NewUploader returns the uploader selected by cfg.Provider.
func NewUploader(ctx context.Context, cfg config.StorageConfig) (Uploader, error) {
	switch cfg.Provider {
	case "s3":
		return NewS3Uploader(ctx, cfg.S3)
	case "local":
		return NewLocalUploader(cfg.Local.Dir, cfg.Local.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

// ObjectPath builds "<folder>/<unix millis>_<short id>_<name>", keeping only
// the base of name.
func ObjectPath(folder, name string, now time.Time) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s/%d_%s_%s", folder, now.UnixMilli(), id, name)
}

// progressReader reports how much of its payload has been read. It stays
// seekable so signed uploads can rewind the body.
type progressReader struct {
	r          io.ReadSeeker
	size       int64
	read       int64
	onProgress ProgressFunc
}

func newProgressReader(r io.ReadSeeker, size int64, onProgress ProgressFunc) *progressReader {
	return &progressReader{r: r, size: size, onProgress: onProgress}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	pos, err := p.r.Seek(offset, whence)
	if err == nil {
		p.read = pos
	}
	return pos, err
}

func (p *progressReader) report() {
	if p.onProgress == nil {
		return
	}
	if p.size <= 0 {
		p.onProgress(1)
		return
	}
	fraction := float64(p.read) / float64(p.size)
	if fraction > 1 {
		fraction = 1
	}
	p.onProgress(fraction)
}
