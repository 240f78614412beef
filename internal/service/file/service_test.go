package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/skponto/skponto-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, maxSize int64) (FileService, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewFileService(local, maxSize), local
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), uint8(x ^ y), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestUploadAttestation_PDF(t *testing.T) {
	svc, local := newService(t, 1024)

	key, err := svc.UploadAttestation(context.Background(), "rec-1", strings.NewReader("%PDF-1.4"), "Atestado.PDF")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "attestations/rec-1/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	rc, err := local.Download(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestUploadAttestation_ImageBecomesJPEG(t *testing.T) {
	svc, local := newService(t, 10<<20)

	key, err := svc.UploadAttestation(context.Background(), "rec-1", bytes.NewReader(pngBytes(t, 64, 64)), "scan.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	rc, err := local.Download(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	_, format, err := image.Decode(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestUploadAttestation_Rejects(t *testing.T) {
	svc, _ := newService(t, 4)

	_, err := svc.UploadAttestation(context.Background(), "rec-1", strings.NewReader("x"), "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = svc.UploadAttestation(context.Background(), "rec-1", strings.NewReader("%PDF-1.4"), "a.pdf")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestCompressImage_ResizesLargeImages(t *testing.T) {
	out, err := compressImage(pngBytes(t, 256, 256), 1024, 512)
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 600, img.Bounds().Dx())
}
