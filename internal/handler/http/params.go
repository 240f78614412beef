package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/jwtauth/v5"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
)

// currentUser returns the user id and role carried by the verified access token.
func currentUser(r *http.Request) (string, user.Role, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", "", false
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", false
	}
	role, _ := claims["role"].(string)
	return userID, user.Role(role), true
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// getBoolQueryParam gets a bool query parameter with a default value
func getBoolQueryParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// getOptionalQueryParam returns nil when key is absent or empty.
func getOptionalQueryParam(r *http.Request, key string) *string {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil
	}
	return &val
}
