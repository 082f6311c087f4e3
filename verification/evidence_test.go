package verification

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
)

func jpegBlob() []byte {
	return []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
}

func pngBlob() []byte {
	return append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, 0x00, 0x00)
}

func TestValidateEvidenceJPEGMagicWithoutHint(t *testing.T) {
	f, err := ValidateEvidence(jpegBlob(), "")
	if err != nil {
		t.Fatalf("ValidateEvidence: %v", err)
	}
	if f != FormatJPEG {
		t.Fatalf("format = %q, want jpeg", f)
	}
}

func TestValidateEvidencePNGMagicWithoutHint(t *testing.T) {
	f, err := ValidateEvidence(pngBlob(), "")
	if err != nil {
		t.Fatalf("ValidateEvidence: %v", err)
	}
	if f != FormatPNG {
		t.Fatalf("format = %q, want png", f)
	}
}

func TestValidateEvidenceHintOverridesMagic(t *testing.T) {
	// Declared type wins when recognized, even over a JPEG magic number.
	f, err := ValidateEvidence(jpegBlob(), "image/png")
	if err != nil {
		t.Fatalf("ValidateEvidence: %v", err)
	}
	if f != FormatPNG {
		t.Fatalf("format = %q, want png from hint", f)
	}
}

func TestValidateEvidenceMismatchedHintStillPassesOnMagic(t *testing.T) {
	f, err := ValidateEvidence(jpegBlob(), "application/pdf")
	if err != nil {
		t.Fatalf("ValidateEvidence: %v", err)
	}
	if f != FormatJPEG {
		t.Fatalf("format = %q, want jpeg from magic", f)
	}
}

func TestValidateEvidenceHintParameters(t *testing.T) {
	f, err := ValidateEvidence([]byte{0x00}, "image/jpeg; charset=binary")
	if err != nil {
		t.Fatalf("ValidateEvidence: %v", err)
	}
	if f != FormatJPEG {
		t.Fatalf("format = %q, want jpeg", f)
	}
}

func TestValidateEvidenceRejectsUnknownBytes(t *testing.T) {
	_, err := ValidateEvidence(make([]byte, 10), "")
	if !errors.Is(err, ErrUnsupportedMediaType) {
		t.Fatalf("err = %v, want ErrUnsupportedMediaType", err)
	}
}

func TestValidateEvidenceRejectsEmpty(t *testing.T) {
	_, err := ValidateEvidence(nil, "image/png")
	if !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("err = %v, want ErrEmptyPayload", err)
	}
}

func TestValidateEvidenceRejectsOversize(t *testing.T) {
	blob := make([]byte, MaxEvidenceSize+1)
	copy(blob, jpegBlob())
	_, err := ValidateEvidence(blob, "image/jpeg")
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("err = %v, want ErrPayloadTooLarge", err)
	}
}

func TestValidateEvidenceBareMagicTooShort(t *testing.T) {
	// The magic alone with no payload behind it is not a valid image.
	_, err := ValidateEvidence([]byte{0xFF, 0xD8, 0xFF}, "")
	if !errors.Is(err, ErrUnsupportedMediaType) {
		t.Fatalf("err = %v, want ErrUnsupportedMediaType", err)
	}
}

func TestFormatExt(t *testing.T) {
	if got := FormatJPEG.Ext(); got != "jpg" {
		t.Fatalf("jpeg ext = %q", got)
	}
	if got := FormatPNG.Ext(); got != "png" {
		t.Fatalf("png ext = %q", got)
	}
}

func TestDecodeDataURI(t *testing.T) {
	raw := jpegBlob()
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

	data, hint, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if hint != "image/jpeg" {
		t.Fatalf("hint = %q", hint)
	}
	if !bytes.Equal(data, raw) {
		t.Fatalf("decoded bytes differ")
	}
}

func TestDecodeDataURIPlainBase64(t *testing.T) {
	raw := pngBlob()
	data, hint, err := DecodeDataURI(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if hint != "" {
		t.Fatalf("hint = %q, want empty", hint)
	}
	if !bytes.Equal(data, raw) {
		t.Fatalf("decoded bytes differ")
	}
}

func TestDecodeDataURIMalformed(t *testing.T) {
	if _, _, err := DecodeDataURI("data:image/png;base64"); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("missing comma: err = %v", err)
	}
	if _, _, err := DecodeDataURI("not base64!!!"); !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("bad base64: err = %v", err)
	}
}

func TestCanPost(t *testing.T) {
	if CanPost(false) {
		t.Fatal("unverified landlord may not post")
	}
	if !CanPost(true) {
		t.Fatal("verified landlord may post")
	}
	// Idempotent under repeated evaluation.
	if CanPost(true) != CanPost(true) {
		t.Fatal("CanPost is not stable")
	}
}
