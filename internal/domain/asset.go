package domain

import (
	"fmt"
	"strings"
)

// DefaultMaxUploadBytes is the upload ceiling when none is configured.
const DefaultMaxUploadBytes int64 = 10 << 20

// AllowedMediaTypes lists the image types accepted for upload.
var AllowedMediaTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

// UploadedAsset is an image received from a client, held only for the
// lifetime of one request.
type UploadedAsset struct {
	Filename  string
	MediaType string
	Size      int64
	Data      []byte
}

// NormalizeMediaType lowercases the declared type and strips parameters. The
// declared type is authoritative; the bytes are never inspected.
func (a *UploadedAsset) NormalizeMediaType() {
	mt := strings.ToLower(strings.TrimSpace(a.MediaType))
	if idx := strings.Index(mt, ";"); idx >= 0 {
		mt = strings.TrimSpace(mt[:idx])
	}
	a.MediaType = mt
}

// Validate checks presence, media type and size against maxBytes. A
// non-positive maxBytes uses DefaultMaxUploadBytes.
func (a *UploadedAsset) Validate(maxBytes int64) error {
	if a == nil || (len(a.Data) == 0 && a.Size == 0) {
		return &ValidationError{Reason: ErrMissingFile}
	}
	if !IsAllowedMediaType(a.MediaType) {
		return &ValidationError{Reason: ErrUnsupportedType, Detail: a.MediaType}
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	size := a.Size
	if n := int64(len(a.Data)); n > size {
		size = n
	}
	if size > maxBytes {
		return &ValidationError{Reason: ErrFileTooLarge, Detail: fmt.Sprintf("%d > %d bytes", size, maxBytes)}
	}
	return nil
}

// IsAllowedMediaType reports whether mediaType is on the upload allow-list.
func IsAllowedMediaType(mediaType string) bool {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	for _, allowed := range AllowedMediaTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

// RemoteFile is the handle the external API returns for an uploaded file.
type RemoteFile struct {
	ID       string
	Name     string
	Size     int64
	FileType string
}
