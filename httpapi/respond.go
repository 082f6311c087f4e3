package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"roomflow/account"
	"roomflow/docstore"
	"roomflow/listing"
	"roomflow/verification"
)

// envelope is the uniform response shape for every /api route, success and
// failure alike.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: status < 400,
		Message: message,
		Data:    data,
	})
}

// writeError maps domain sentinels to HTTP statuses. Unknown errors become
// an opaque 500 so internals never leak through the boundary.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeJSON(w, status, message, nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, account.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, verification.ErrAccountNotFound),
		errors.Is(err, verification.ErrRequestNotFound),
		errors.Is(err, listing.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrBanned):
		return http.StatusForbidden
	case errors.Is(err, account.ErrWeakPassword),
		errors.Is(err, account.ErrEmailRequired),
		errors.Is(err, verification.ErrMissingDocumentType),
		errors.Is(err, verification.ErrEmptyPayload),
		errors.Is(err, verification.ErrMalformedPayload),
		errors.Is(err, verification.ErrUnsupportedMediaType),
		errors.Is(err, verification.ErrPayloadTooLarge),
		errors.Is(err, listing.ErrMissingRequiredField):
		return http.StatusBadRequest
	case errors.Is(err, docstore.ErrStorageUnavailable):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
