// Package blobstore keeps uploaded post images. Payloads are checked to be
// decodable images before anything is written.
package blobstore

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"yatube/app/apperr"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// InvalidImageMessage is the form error shown for a rejected upload.
const InvalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// MaxImageBytes caps a single upload.
const MaxImageBytes = 5 << 20

// Store persists image blobs under generated paths.
type Store interface {
	Put(ctx context.Context, data []byte) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// Validate checks data is an image and returns its MIME type and file
// extension. Sniffing alone is not enough; the header must also decode.
func Validate(data []byte) (mime, ext string, err error) {
	if len(data) == 0 || len(data) > MaxImageBytes {
		return "", "", apperr.NewValidation("image", InvalidImageMessage)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", "", apperr.NewValidation("image", InvalidImageMessage)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", "", apperr.NewValidation("image", InvalidImageMessage)
	}
	return mt.String(), mt.Extension(), nil
}

// newPath names a blob posts/<uuid><ext>.
func newPath(ext string) string {
	return "posts/" + uuid.NewString() + ext
}

// ContentType sniffs the MIME type of a stored blob for serving.
func ContentType(data []byte) string {
	return mimetype.Detect(data).String()
}
