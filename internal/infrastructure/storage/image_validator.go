package storage

import (
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var defaultImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// extensionAliases lists extensions accepted for a type besides
// mimetype's canonical one.
var extensionAliases = map[string][]string{
	"image/jpeg": {".jpeg", ".jpe"},
}

// ImageValidator checks uploaded bytes by content, not by the client's
// filename or Content-Type header.
type ImageValidator struct {
	allowed []string
}

func NewImageValidator(allowed ...string) *ImageValidator {
	if len(allowed) == 0 {
		allowed = defaultImageTypes
	}
	return &ImageValidator{allowed: allowed}
}

// Validate sniffs the head of rs and rewinds it. It returns the detected
// type when it is one of the allowed image types.
func (v *ImageValidator) Validate(rs io.ReadSeeker) (*mimetype.MIME, error) {
	mtype, err := mimetype.DetectReader(rs)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("cannot rewind file: %w", err)
	}

	for _, allowed := range v.allowed {
		if mtype.Is(allowed) {
			return mtype, nil
		}
	}
	return nil, fmt.Errorf("file type %s not allowed", mtype.String())
}

// ExtensionFor returns ext when it is a valid extension for mtype, and the
// canonical extension of mtype otherwise. Static serving derives
// Content-Type from the stored name, so it must match the content.
func ExtensionFor(mtype *mimetype.MIME, ext string) string {
	ext = strings.ToLower(ext)
	canonical := mtype.Extension()
	if ext == canonical {
		return ext
	}
	for _, alias := range extensionAliases[mtype.String()] {
		if ext == alias {
			return ext
		}
	}
	return canonical
}
