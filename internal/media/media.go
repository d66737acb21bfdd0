// Package media stores uploaded product images on the local filesystem and
// serves them by public URL.
package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// MaxUploadSize is the largest accepted image payload.
const MaxUploadSize = 5 << 20

var (
	// ErrNotImage is returned for uploads whose content type is not image/*.
	ErrNotImage = errors.New("file is not an image")
	// ErrTooLarge is returned for uploads exceeding MaxUploadSize.
	ErrTooLarge = errors.New("image exceeds maximum size")
)

// Upload describes an incoming image file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store saves and removes product images.
type Store interface {
	Save(ctx context.Context, up Upload) (publicURL string, err error)
	Remove(ctx context.Context, publicURL string) error
}

var _ Store = (*FileStore)(nil)

// FileStore keeps images in a flat directory and serves them under baseURL.
type FileStore struct {
	dir     string
	baseURL string
}

// NewFileStore creates the directory if needed and returns a FileStore.
// baseURL is the public path prefix images are served under, e.g. "/media".
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create media dir")
	}
	return &FileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory images are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save validates and writes the upload, returning its public URL. Generated
// names follow <unix-millis>-<random>.<ext> so uploads never collide and never
// reuse a client-controlled path.
func (s *FileStore) Save(ctx context.Context, up Upload) (string, error) {
	if !strings.HasPrefix(up.ContentType, "image/") {
		return "", ErrNotImage
	}
	if up.Size > MaxUploadSize {
		return "", ErrTooLarge
	}

	name, err := generateName(up.Filename)
	if err != nil {
		return "", errors.Wrap(err, "generate name")
	}

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", errors.Wrap(err, "create file")
	}
	defer dst.Close()

	// LimitReader enforces the ceiling even when the declared size lies.
	n, err := io.Copy(dst, io.LimitReader(up.Body, MaxUploadSize+1))
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", errors.Wrap(err, "write file")
	}
	if n > MaxUploadSize {
		_ = os.Remove(dst.Name())
		return "", ErrTooLarge
	}

	return s.baseURL + "/" + name, nil
}

// Remove deletes the image behind a public URL previously returned by Save.
// URLs outside the store's base are rejected; missing files are a no-op.
func (s *FileStore) Remove(ctx context.Context, publicURL string) error {
	u, err := url.Parse(publicURL)
	if err != nil {
		return errors.Wrap(err, "parse URL")
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || !strings.HasPrefix(u.Path, s.baseURL+"/") {
		return errors.New("URL outside media store")
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "remove file")
	}
	return nil
}

func generateName(original string) (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".bin"
	}
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return ts + "-" + hex.EncodeToString(buf) + ext, nil
}
