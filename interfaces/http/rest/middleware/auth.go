package middleware

import (
	"net/http"

	"invitelinks-backend/pkg/common"

	"go.uber.org/zap"
)

// APIKey enforces the shared-secret header. A request whose X-Api-Key header
// does not equal the configured secret is rejected before any storage access.
func APIKey(expected string, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				logger.Warn("API_KEY environment variable is not set")
			}

			provided := r.Header.Get("X-Api-Key")
			if provided == "" || provided != expected {
				common.RespondMessage(w, http.StatusUnauthorized, common.MsgUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
