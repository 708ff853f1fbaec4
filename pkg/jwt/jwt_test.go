package jwt

import (
	"errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"virs-challenge/backend/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: 15 * time.Minute,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	m := newTestManager()

	token, err := m.GenerateAccessToken("user-1", RoleAdmin, "admin@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken 失败: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", claims.UserID)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("期望 Role=admin，实际=%s", claims.Role)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("期望 Email=admin@example.com，实际=%s", claims.Email)
	}
	if claims.Issuer != "virs-challenge" {
		t.Errorf("期望 Issuer=virs-challenge，实际=%s", claims.Issuer)
	}
	if claims.ID == "" {
		t.Error("JTI 不应为空")
	}
}

func TestParseToken_Expired(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		AccessTokenTTL: -time.Minute,
	})

	token, err := m.GenerateAccessToken("user-1", RoleMember, "")
	if err != nil {
		t.Fatalf("GenerateAccessToken 失败: %v", err)
	}

	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret-key-for-testing-0000",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, _ := other.GenerateAccessToken("user-1", RoleMember, "")
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_WrongIssuer(t *testing.T) {
	m := newTestManager()
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing-2026",
		Issuer:         "someone-else",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, _ := other.GenerateAccessToken("user-1", RoleMember, "")
	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_RejectsNoneAlgorithm(t *testing.T) {
	m := newTestManager()

	claims := Claims{
		UserID:    "user-1",
		Role:      RoleAdmin,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "virs-challenge",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims)
	signed, err := token.SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("构造 none token 失败: %v", err)
	}

	if _, err := m.ParseToken(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	m := newTestManager()
	if _, err := m.ParseToken("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
