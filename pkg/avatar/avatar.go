// Package avatar validates user avatar images and hands them to an image host.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("file is too large")
	ErrUpstream = errors.New("image host failed")
)

// Object is a single file to be stored by an Uploader.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores an object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, obj Object) (string, error)
}

type UseCase interface {
	Upload(ctx context.Context, ownerID uuid.UUID, contentType string, size int64, body io.Reader) (string, error)
}

type service struct {
	uploader Uploader
	folder   string
	maxBytes int64
}

func NewService(uploader Uploader, folder string, maxBytes int64) UseCase {
	return &service{uploader: uploader, folder: strings.Trim(folder, "/"), maxBytes: maxBytes}
}

func (s *service) Upload(ctx context.Context, ownerID uuid.UUID, contentType string, size int64, body io.Reader) (string, error) {
	mediaType, err := imageType(contentType)
	if err != nil {
		return "", err
	}
	if s.maxBytes > 0 && size > s.maxBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}
	key := path.Join(s.folder, ownerID.String(), uuid.NewString()+extension(mediaType))
	url, err := s.uploader.Upload(ctx, Object{
		Key:         key,
		ContentType: mediaType,
		Size:        size,
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return url, nil
}

func imageType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return "", ErrNotImage
	}
	return mediaType, nil
}

var imageExtensions = map[string]string{
	"image/avif":    ".avif",
	"image/bmp":     ".bmp",
	"image/gif":     ".gif",
	"image/heic":    ".heic",
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/svg+xml": ".svg",
	"image/tiff":    ".tiff",
	"image/webp":    ".webp",
	"image/x-icon":  ".ico",
}

// extension derives the object key suffix from the media type alone; the
// client filename is never trusted.
func extension(mediaType string) string {
	if ext, ok := imageExtensions[mediaType]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
		return exts[0]
	}
	return ""
}
