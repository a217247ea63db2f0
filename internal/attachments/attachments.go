// Package attachments validates media payloads and hands them to attachment
// storage. Only image and video messages carry attachments.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"messaging-service/internal/models"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrPayloadTooLarge      = errors.New("payload too large")
)

// Size caps per declared kind.
const (
	MaxImageBytes = 10 << 20
	MaxVideoBytes = 50 << 20
)

// Store persists attachment bytes and returns a serveable reference.
type Store interface {
	Upload(ctx context.Context, key string, contentType string, data []byte) (string, error)
}

// Validate checks the payload against the declared kind. The sniffed content
// type must agree with the declaration; a renamed file does not get past it.
func Validate(data []byte, kind string) (string, error) {
	var limit int
	var prefix string
	switch kind {
	case models.KindImage:
		limit, prefix = MaxImageBytes, "image/"
	case models.KindVideo:
		limit, prefix = MaxVideoBytes, "video/"
	default:
		return "", fmt.Errorf("%w: kind %q cannot carry an attachment", ErrUnsupportedMediaType, kind)
	}

	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", ErrUnsupportedMediaType)
	}
	if len(data) > limit {
		return "", fmt.Errorf("%w: %d bytes over the %d byte %s limit", ErrPayloadTooLarge, len(data), limit, kind)
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), prefix) {
		return "", fmt.Errorf("%w: detected %s for declared kind %s", ErrUnsupportedMediaType, detected.String(), kind)
	}
	return detected.String(), nil
}

// ObjectKey builds a collision-free storage key, keeping the original
// extension for content-type inference on the serving side.
func ObjectKey(kind, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", kind, uuid.NewString(), ext)
}
