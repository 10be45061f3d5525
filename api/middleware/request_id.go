package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/logger"
)

const RequestIDHeader = "X-Request-Id"

// storefront and gateway ids are uuids or short opaque tokens
var requestIDRe = regexp.MustCompile(`^[A-Za-z0-9._:-]{8,128}$`)

// RequestID echoes a well-formed caller id, or mints a fresh uuid, and tags
// every log line of the request with it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if !requestIDRe.MatchString(id) {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}
