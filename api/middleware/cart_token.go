package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/basecampsupply/storefront-backend/pkg/logger"
)

const cartTokenHeader = "X-Cart-Token"

// CartToken reads the caller's opaque cart token, minting a fresh one when
// the header is absent. The token is echoed back so anonymous clients can
// persist it for subsequent cart calls.
func CartToken(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(cartTokenHeader))
			if token == "" {
				token = uuid.NewString()
			}

			w.Header().Set(cartTokenHeader, token)

			ctx := WithCartToken(r.Context(), token)
			if logg != nil {
				ctx = logg.WithCartToken(ctx, token)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
