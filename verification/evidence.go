package verification

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strings"
)

// Format is an accepted evidence image type.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
)

// MaxEvidenceSize caps uploaded evidence at 100 MiB, matching the body
// limit enforced at the edge.
const MaxEvidenceSize = 100 << 20

var (
	// ErrEmptyPayload signals a zero-length upload.
	ErrEmptyPayload = errors.New("verification: empty evidence payload")
	// ErrPayloadTooLarge signals the upload exceeds MaxEvidenceSize.
	ErrPayloadTooLarge = errors.New("verification: evidence exceeds 100 MiB")
	// ErrUnsupportedMediaType signals the upload is neither JPEG nor PNG.
	ErrUnsupportedMediaType = errors.New("verification: only JPEG or PNG evidence accepted")
	// ErrMalformedPayload signals undecodable base64 input.
	ErrMalformedPayload = errors.New("verification: malformed evidence payload")
)

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
)

// ValidateEvidence classifies an uploaded blob using two independent
// signals: the caller-declared media type hint and the leading magic bytes.
// Either signal recognizing the content is enough: declared types are
// unreliable and magic sniffing alone over-trusts truncated transfers, so a
// mismatched hint with a valid magic number still passes. The hint wins
// when both are present.
func ValidateEvidence(data []byte, hint string) (Format, error) {
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}
	if len(data) > MaxEvidenceSize {
		return "", ErrPayloadTooLarge
	}

	if f, ok := formatFromHint(hint); ok {
		return f, nil
	}
	if f, ok := formatFromMagic(data); ok {
		return f, nil
	}
	return "", ErrUnsupportedMediaType
}

// Ext is the file extension used when persisting evidence.
func (f Format) Ext() string {
	if f == FormatPNG {
		return "png"
	}
	return "jpg"
}

func formatFromHint(hint string) (Format, bool) {
	mediaType := strings.ToLower(strings.TrimSpace(hint))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return FormatJPEG, true
	case "image/png":
		return FormatPNG, true
	default:
		return "", false
	}
}

func formatFromMagic(data []byte) (Format, bool) {
	if len(data) > len(jpegMagic) && bytes.HasPrefix(data, jpegMagic) {
		return FormatJPEG, true
	}
	if len(data) > len(pngMagic) && bytes.HasPrefix(data, pngMagic) {
		return FormatPNG, true
	}
	return "", false
}

// DecodeDataURI splits an uploaded base64 string into raw bytes and the
// declared media type. Plain base64 without a data: prefix is accepted; the
// hint is then empty and classification relies on magic bytes alone.
func DecodeDataURI(s string) ([]byte, string, error) {
	hint := ""
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, "", ErrMalformedPayload
		}
		meta := s[len("data:"):comma]
		meta = strings.TrimSuffix(meta, ";base64")
		if i := strings.IndexByte(meta, ';'); i >= 0 {
			meta = meta[:i]
		}
		hint = meta
		s = s[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", ErrMalformedPayload
	}
	return data, hint, nil
}
