package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"math"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/skponto/skponto-backend-go/internal/pkg/storage"
	"golang.org/x/image/draw"
)

var (
	ErrUnsupportedFileType = errors.New("invalid file type: only pdf, jpg, jpeg, png allowed")
	ErrFileTooLarge        = errors.New("file exceeds the upload size limit")
)

type FileService interface {
	// UploadAttestation stores a medical attestation scan for a time record
	// and returns its storage key.
	UploadAttestation(ctx context.Context, timeRecordID string, file io.Reader, filename string) (string, error)
	DeleteFile(ctx context.Context, path string) error
}

type fileServiceImpl struct {
	storage       storage.FileStorage
	maxUploadSize int64
}

func NewFileService(storage storage.FileStorage, maxUploadSize int64) FileService {
	if maxUploadSize <= 0 {
		maxUploadSize = 10 << 20
	}
	return &fileServiceImpl{
		storage:       storage,
		maxUploadSize: maxUploadSize,
	}
}

// UploadAttestation keeps PDFs as-is and recompresses photos to JPEG
// between 50KB and 300KB.
func (s *fileServiceImpl) UploadAttestation(ctx context.Context, timeRecordID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" && ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return "", ErrUnsupportedFileType
	}

	buffer, err := io.ReadAll(io.LimitReader(file, s.maxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read attestation: %w", err)
	}
	if int64(len(buffer)) > s.maxUploadSize {
		return "", ErrFileTooLarge
	}

	contentType := "application/pdf"
	if ext != ".pdf" {
		buffer, err = compressImage(buffer, 300*1024, 50*1024)
		if err != nil {
			return "", fmt.Errorf("failed to compress image: %w", err)
		}
		ext = ".jpg"
		contentType = "image/jpeg"
	}

	key := path.Join("attestations", timeRecordID, uuid.NewString()+ext)
	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(buffer), key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload attestation: %w", err)
	}

	return uploadedPath, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// compressImage re-encodes an image as JPEG, lowering quality and then
// resizing until it fits under maxSize. Images already within
// [minSize, maxSize] are re-encoded once at quality 85.
func compressImage(buffer []byte, maxSize int, minSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	originalWidth := bounds.Dx()
	originalHeight := bounds.Dy()

	quality := 85
	var compressed []byte

	for quality >= 50 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		compressed = buf.Bytes()

		if len(compressed) <= maxSize {
			return compressed, nil
		}
		quality -= 5
	}

	// Still too large: scale towards the middle of the range.
	targetSize := (maxSize + minSize) / 2
	ratio := math.Sqrt(float64(targetSize) / float64(len(compressed)))
	newWidth := max(int(float64(originalWidth)*ratio), 600)
	newHeight := max(int(float64(originalHeight)*ratio), 400)

	resized := resizeImage(img, newWidth, newHeight)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: 70}); err != nil {
		return nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
