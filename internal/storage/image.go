package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	// Registers the WebP decoder with image.Decode.
	_ "golang.org/x/image/webp"
)

// Image limits.
const (
	PostImageMaxSide      = 1600
	ProfilePictureMaxSide = 512
	// MaxImagePixels bounds width*height before a full decode.
	MaxImagePixels = 40_000_000

	jpegQuality = 85
	webpQuality = 80
)

var (
	// ErrEmptyUpload means no file content was submitted.
	ErrEmptyUpload = errors.New("storage: empty upload")
	// ErrNotImage means the upload could not be decoded as an image.
	ErrNotImage = errors.New("storage: not an image")
	// ErrTooLarge means the upload exceeds the byte or pixel limit.
	ErrTooLarge = errors.New("storage: upload too large")
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Media stores normalized images in a Store.
type Media struct {
	store     Store
	maxBytes  int64
	maxPixels int
}

// NewMedia wraps store. maxBytes <= 0 disables the size check.
func NewMedia(store Store, maxBytes int64) *Media {
	return &Media{store: store, maxBytes: maxBytes, maxPixels: MaxImagePixels}
}

// Store returns the underlying store.
func (m *Media) Store() Store { return m.store }

// CheckImage verifies up is a decodable image within the size limit.
func (m *Media) CheckImage(up Upload) error {
	_, err := m.decode(up)
	return err
}

func (m *Media) decode(up Upload) (image.Image, error) {
	if len(up.Data) == 0 {
		return nil, ErrEmptyUpload
	}
	if m.maxBytes > 0 && int64(len(up.Data)) > m.maxBytes {
		return nil, ErrTooLarge
	}
	sniffed := http.DetectContentType(up.Data)
	if !allowedImageTypes[sniffed] && !isWebP(up.Data) {
		return nil, ErrNotImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(up.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrNotImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(m.maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, cfg.Width, cfg.Height)
	}
	img, err := imaging.Decode(bytes.NewReader(up.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return img, nil
}

// isWebP checks the RIFF/WEBP signature, which older sniffers do not know.
func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}

// SavePostImage stores up as a JPEG under post_images/ and returns its key.
func (m *Media) SavePostImage(ctx context.Context, up Upload) (string, error) {
	img, err := m.decode(up)
	if err != nil {
		return "", err
	}
	img = imaging.Fit(img, PostImageMaxSide, PostImageMaxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode post image: %w", err)
	}

	key := PostImagesPrefix + uuid.NewString() + ".jpg"
	if err := m.store.Save(ctx, key, buf.Bytes(), "image/jpeg"); err != nil {
		return "", err
	}
	return key, nil
}

// SaveProfilePicture stores up as a square-bounded WebP under profile_pics/.
func (m *Media) SaveProfilePicture(ctx context.Context, up Upload) (string, error) {
	img, err := m.decode(up)
	if err != nil {
		return "", err
	}
	img = imaging.Fit(img, ProfilePictureMaxSide, ProfilePictureMaxSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: webpQuality}); err != nil {
		return "", fmt.Errorf("encode profile picture: %w", err)
	}

	key := ProfilePicturePrefix + uuid.NewString() + ".webp"
	if err := m.store.Save(ctx, key, buf.Bytes(), "image/webp"); err != nil {
		return "", err
	}
	return key, nil
}

// Delete removes key. Empty keys are ignored.
func (m *Media) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	return m.store.Delete(ctx, key)
}

// URL returns the public URL of key, or "" when key is empty.
func (m *Media) URL(key string) string {
	if key == "" {
		return ""
	}
	return m.store.URL(key)
}
