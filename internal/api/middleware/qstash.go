package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/berkedogan/tasks-api/internal/api/shared"
	"github.com/berkedogan/tasks-api/internal/platform/qstash"
)

// SignatureVerifier checks a queue callback signature against the raw body.
type SignatureVerifier interface {
	Verify(signature string, body []byte, callbackURL string) error
}

// QStashSignature rejects callbacks whose Upstash-Signature does not match
// the body and the configured callback URL. The body is restored for the
// next handler.
func QStashSignature(verifier SignatureVerifier, callbackURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, shared.MaxRequestBodyBytes))
			if err != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
				return
			}

			err = verifier.Verify(r.Header.Get(qstash.SignatureHeader), body, callbackURL)
			if err != nil {
				message := "Invalid signature"
				if errors.Is(err, qstash.ErrMissingSignature) {
					message = "Signature required"
				}
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, message, err,
					shared.WithElevatedLogLevel())
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
