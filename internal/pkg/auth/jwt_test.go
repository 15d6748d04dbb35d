package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/arda/classplanner/internal/app/models"
)

func testService(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:      "unit-test-secret",
		AccessTokenExp: exp,
		TokenIssuer:    "classplanner-test",
	})
}

func testUser() *models.User {
	return &models.User{
		ID:       42,
		Email:    "op@example.com",
		RoleType: models.RoleAdmin,
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := testService(time.Hour)

	access, expiresIn, err := svc.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if access == "" {
		t.Fatal("expected a non-empty token")
	}
	if expiresIn != 3600 {
		t.Fatalf("expiresIn = %d, want 3600", expiresIn)
	}

	claims, err := svc.ValidateAndExtractClaims(access)
	if err != nil {
		t.Fatalf("ValidateAndExtractClaims failed: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "op@example.com" || claims.RoleType != "ADMIN" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	access, _, err := testService(time.Hour).GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	other := NewJWTService(JWTConfig{SecretKey: "different-secret", AccessTokenExp: time.Hour})
	if _, err := other.ValidateToken(access); err == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := testService(-time.Minute)
	access, _, err := svc.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := svc.ValidateToken(access); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("error = %v, want ErrExpiredToken", err)
	}
}

func TestValidateAndExtractClaimsEmpty(t *testing.T) {
	if _, err := testService(time.Hour).ValidateAndExtractClaims(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("error = %v, want ErrInvalidToken", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	got, err := ExtractBearerToken("Bearer abc.def.ghi")
	if err != nil || got != "abc.def.ghi" {
		t.Fatalf("ExtractBearerToken = (%q, %v)", got, err)
	}

	// A raw token without the prefix passes through unchanged.
	got, err = ExtractBearerToken("abc.def.ghi")
	if err != nil || got != "abc.def.ghi" {
		t.Fatalf("ExtractBearerToken = (%q, %v)", got, err)
	}

	if _, err := ExtractBearerToken(""); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("error = %v, want ErrInvalidFormat", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("sup3rsecret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "sup3rsecret" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "sup3rsecret") {
		t.Fatal("correct password should verify")
	}
	if CheckPassword(hash, "wrongpass1") {
		t.Fatal("wrong password must not verify")
	}
}
