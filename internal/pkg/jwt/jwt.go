package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/skponto/skponto-backend-go/internal/domain/user"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"
)

var ErrInvalidTokenType = errors.New("token has the wrong type")

// Service verifies bearer tokens issued by the identity provider and mints
// the short-lived tokens used by EventSource clients, which cannot send headers.
type Service interface {
	// GenerateAccessToken issues an access token. Used by local tooling and tests;
	// production tokens come from the identity provider sharing the secret.
	GenerateAccessToken(userID string, email string, role user.Role) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenTTL time.Duration
	sseTokenTTL    time.Duration
	tokenAuth      *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenTTL time.Duration) Service {
	if accessTokenTTL <= 0 {
		accessTokenTTL = 15 * time.Minute
	}
	return &JWTService{
		accessTokenTTL: accessTokenTTL,
		sseTokenTTL:    5 * time.Minute,
		tokenAuth:      jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(userID string, email string, role user.Role) (string, int64, error) {
	expiresAt := time.Now().Add(j.accessTokenTTL).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"role":    string(role),
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateSSEToken(userID string) (string, int, error) {
	expiresAt := time.Now().Add(j.sseTokenTTL).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    TokenTypeSSE,
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(j.sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken verifies signature, expiry and type, and returns the user id.
func (j *JWTService) ValidateSSEToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", ErrInvalidTokenType
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return userID, nil
}
