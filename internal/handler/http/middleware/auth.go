package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/skponto/skponto-backend-go/internal/handler/http/response"
	"github.com/skponto/skponto-backend-go/internal/pkg/jwt"
)

// AuthRequired rejects requests without a verified access token. SSE tokens
// are refused here so they cannot be replayed against the API.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.Unauthorized(w, "invalid token")
			return
		}

		tokenType, ok := claims["type"].(string)
		if tokenType != jwt.TokenTypeAccess || !ok {
			response.Unauthorized(w, "invalid token type")
			return
		}

		userID, ok := claims["user_id"].(string)
		if userID == "" || !ok {
			response.Unauthorized(w, "invalid token subject")
			return
		}

		next.ServeHTTP(w, r)
	})
}
