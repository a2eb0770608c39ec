package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes files under a directory served at baseURL.
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader creates dir if needed.
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the root directory files are written to.
func (u *LocalUploader) Dir() string {
	return u.dir
}

// Upload writes data to destination below the root directory.
func (u *LocalUploader) Upload(ctx context.Context, data []byte, destination, _ string, onProgress ProgressFunc) (string, error) {
	target, err := u.resolve(destination)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	src := newProgressReader(bytes.NewReader(data), int64(len(data)), onProgress)
	if _, err := io.Copy(f, readerWithContext{ctx: ctx, r: src}); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write file: %w", err)
	}
	if len(data) == 0 && onProgress != nil {
		onProgress(1)
	}
	return u.baseURL + "/" + filepath.ToSlash(destination), nil
}

// Delete removes the file behind url.
func (u *LocalUploader) Delete(_ context.Context, url string) error {
	rel := strings.TrimPrefix(url, u.baseURL+"/")
	if rel == url || rel == "" {
		return fmt.Errorf("invalid file URL: %s", url)
	}
	target, err := u.resolve(rel)
	if err != nil {
		return err
	}
	return os.Remove(target)
}

func (u *LocalUploader) resolve(rel string) (string, error) {
	target := filepath.Join(u.dir, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, filepath.Clean(u.dir)+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the upload dir", rel)
	}
	return target, nil
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(b []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(b)
}
