package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing-0123456789"

func TestGenerateAndParseToken(t *testing.T) {
	tok, err := GenerateToken(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if tok.AccessToken == "" {
		t.Fatal("GenerateToken() returned empty token")
	}
	if tok.TTL != time.Hour {
		t.Errorf("TTL = %v, want 1h", tok.TTL)
	}

	claims, err := ParseToken(tok.AccessToken, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != Subject {
		t.Errorf("Subject = %q, want %q", claims.Subject, Subject)
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
	if claims.ExpiresAt.Time.Before(time.Now()) {
		t.Error("newly generated token should not be expired")
	}
}

func TestGenerateToken_DefaultTTL(t *testing.T) {
	tok, err := GenerateToken(testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	diff := time.Until(tok.ExpiresAt) - DefaultTokenTTL
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("default TTL should be ~24h, got expiry diff of %v", diff)
	}
}

func TestGenerateToken_UniqueIDs(t *testing.T) {
	a, _ := GenerateToken(testSecret, time.Hour)
	b, _ := GenerateToken(testSecret, time.Hour)

	ca, _ := ParseToken(a.AccessToken, testSecret)
	cb, _ := ParseToken(b.AccessToken, testSecret)
	if ca.ID == cb.ID {
		t.Error("two tokens should carry distinct ids")
	}
}

func TestParseToken_Invalid(t *testing.T) {
	valid, err := GenerateToken(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	signed := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("signing test token: %v", err)
		}
		return s
	}

	expired := signed(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   Subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}, jwt.SigningMethodHS256, []byte(testSecret))

	wrongSubject := signed(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}, jwt.SigningMethodHS256, []byte(testSecret))

	noExpiry := signed(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: Subject,
	}}, jwt.SigningMethodHS256, []byte(testSecret))

	wrongMethod := signed(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   Subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}, jwt.SigningMethodHS512, []byte(testSecret))

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "empty", token: "", secret: testSecret},
		{name: "garbage", token: "not-a-valid-jwt", secret: testSecret},
		{name: "malformed", token: "abc.def", secret: testSecret},
		{name: "wrong secret", token: valid.AccessToken, secret: "another-secret-key-for-jwt-signing-xyz"},
		{name: "expired", token: expired, secret: testSecret},
		{name: "wrong subject", token: wrongSubject, secret: testSecret},
		{name: "no expiry", token: noExpiry, secret: testSecret},
		{name: "wrong signing method", token: wrongMethod, secret: testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}
