// Package admin guards operator endpoints with a shared token whose bcrypt
// hash is configured at startup.
package admin

import (
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"screening/pkg/platform/audit"
	"screening/pkg/requestcontext"
)

// HeaderName carries the plaintext admin token.
const HeaderName = "X-Admin-Token"

// RequireAdminToken rejects requests whose token does not match tokenHash.
// An empty hash disables the protected routes entirely. Denials are emitted
// to emitter when it is non-nil.
func RequireAdminToken(tokenHash string, logger *slog.Logger, emitter audit.Emitter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			if tokenHash == "" {
				logger.WarnContext(ctx, "admin endpoint called but no admin token configured",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusForbidden, `{"error":"forbidden","error_description":"admin endpoints disabled"}`)
				return
			}

			token := r.Header.Get(HeaderName)
			if token == "" || bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) != nil {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestID,
					"client_ip", requestcontext.ClientIP(ctx),
				)
				if emitter != nil {
					if err := emitter.Emit(ctx, audit.Event{
						Action:    string(audit.EventAdminAccessDenied),
						Subject:   r.URL.Path,
						RequestID: requestID,
					}); err != nil {
						logger.WarnContext(ctx, "failed to emit admin denial", "request_id", requestID, "error", err)
					}
				}
				writeJSONError(w, http.StatusUnauthorized, `{"error":"unauthorized","error_description":"admin token required"}`)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HashToken produces the bcrypt hash to place in ADMIN_TOKEN_HASH.
func HashToken(token string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func writeJSONError(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
