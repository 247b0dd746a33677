package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/haulhub-backend/pkg/config"
	"github.com/angelmondragon/haulhub-backend/pkg/enums"
)

func mintTestToken(t *testing.T, cfg config.JWTConfig, claims AccessTokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func TestParseAccessTokenRoundTrip(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "haulhub"}
	userID := uuid.New()
	now := time.Now()

	signed := mintTestToken(t, cfg, AccessTokenClaims{
		UserID: userID,
		Role:   enums.UserRoleCarrier,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	claims, err := ParseAccessToken(cfg, signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != enums.UserRoleCarrier {
		t.Fatalf("expected carrier role, got %s", claims.Role)
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "haulhub"}
	now := time.Now()

	signed := mintTestToken(t, cfg, AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.UserRoleShipper,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	})

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	mintCfg := config.JWTConfig{Secret: "test-secret", Issuer: "someone-else"}
	parseCfg := config.JWTConfig{Secret: "test-secret", Issuer: "haulhub"}
	now := time.Now()

	signed := mintTestToken(t, mintCfg, AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.UserRoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    mintCfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	if _, err := ParseAccessToken(parseCfg, signed); err == nil {
		t.Fatalf("expected issuer mismatch to fail")
	}
}

func TestParseAccessTokenRejectsUnknownRole(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "haulhub"}
	now := time.Now()

	signed := mintTestToken(t, cfg, AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.UserRole("driver"),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})

	if _, err := ParseAccessToken(cfg, signed); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
}
