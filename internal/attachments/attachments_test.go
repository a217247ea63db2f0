package attachments

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messaging-service/internal/models"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

func TestValidateAcceptsMatchingImage(t *testing.T) {
	contentType, err := Validate(pngBytes, models.KindImage)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
}

func TestValidateRejectsMismatchedKind(t *testing.T) {
	// Declared video, sniffs as image.
	_, err := Validate(pngBytes, models.KindVideo)
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)
}

func TestValidateRejectsTextKind(t *testing.T) {
	_, err := Validate(pngBytes, models.KindText)
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)
}

func TestValidateRejectsEmptyPayload(t *testing.T) {
	_, err := Validate(nil, models.KindImage)
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)
}

func TestValidateRejectsOversizedImage(t *testing.T) {
	data := append(bytes.Clone(pngBytes), make([]byte, MaxImageBytes)...)
	_, err := Validate(data, models.KindImage)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestValidateRejectsRenamedFile(t *testing.T) {
	_, err := Validate([]byte("just some text"), models.KindImage)
	assert.ErrorIs(t, err, ErrUnsupportedMediaType)
}

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := ObjectKey(models.KindImage, "Holiday Photo.PNG")
	assert.True(t, strings.HasPrefix(key, "image/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
}

func TestObjectKeyIsUnique(t *testing.T) {
	a := ObjectKey(models.KindVideo, "clip.mp4")
	b := ObjectKey(models.KindVideo, "clip.mp4")
	assert.NotEqual(t, a, b)
}
