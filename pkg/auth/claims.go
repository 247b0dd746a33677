package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/haulhub-backend/pkg/enums"
)

// AccessTokenClaims represents the typed JWT clients present. Tokens are minted
// by the identity service; this engine only verifies them.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
