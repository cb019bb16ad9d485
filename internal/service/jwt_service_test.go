package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTService_IssueVerify(t *testing.T) {
	svc := NewJWTService(testAuthConfig())

	start := time.Now().UTC()
	token, expiresAt, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if expiresAt.Before(start.Add(59*time.Minute)) || expiresAt.After(start.Add(61*time.Minute)) {
		t.Fatalf("expected expiry about one hour ahead, got %v", expiresAt)
	}

	subject, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if subject != "u1" {
		t.Fatalf("expected subject u1, got %q", subject)
	}
}

func TestJWTService_DefaultTTLIsThirtyDays(t *testing.T) {
	cfg := testAuthConfig()
	cfg.TokenTTL = 0
	svc := NewJWTService(cfg)

	start := time.Now().UTC()
	_, expiresAt, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if expiresAt.Sub(start) < 30*24*time.Hour-time.Minute {
		t.Fatalf("expected 30 day ttl, got %v", expiresAt.Sub(start))
	}
}

func TestJWTService_RejectsForgedSignature(t *testing.T) {
	svc := NewJWTService(testAuthConfig())
	forgerCfg := testAuthConfig()
	forgerCfg.SigningKey = "attacker-key"
	forger := NewJWTService(forgerCfg)

	forged, _, err := forger.Issue("u1")
	if err != nil {
		t.Fatalf("issue forged: %v", err)
	}
	if _, err := svc.Verify(forged); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for forged token, got %v", err)
	}
}

func TestJWTService_RejectsTamperedPayload(t *testing.T) {
	svc := NewJWTService(testAuthConfig())
	token, _, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other, _, err := svc.Issue("u2")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	tampered := parts[0] + "." + otherParts[1] + "." + parts[2]
	if _, err := svc.Verify(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
}

func TestJWTService_ExpiredToken(t *testing.T) {
	svc := NewJWTService(testAuthConfig())
	token, _, err := svc.Issue("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := svc.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTService_ExpiredForgedTokenIsInvalid(t *testing.T) {
	svc := NewJWTService(testAuthConfig())
	now := time.Now().UTC()
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("attacker-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid when signature is bad, got %v", err)
	}
}

func TestJWTService_RejectsMissingAndMalformed(t *testing.T) {
	svc := NewJWTService(testAuthConfig())

	if _, err := svc.Verify("   "); !errors.Is(err, ErrTokenMissing) {
		t.Fatalf("expected ErrTokenMissing, got %v", err)
	}
	for _, token := range []string{"abc", "a.b.c", "not.a.jwt.at.all"} {
		if _, err := svc.Verify(token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", token, err)
		}
	}
}

func TestJWTService_RejectsWrongIssuer(t *testing.T) {
	svc := NewJWTService(testAuthConfig())
	now := time.Now().UTC()
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "other-issuer",
			Subject:   "u1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for wrong issuer, got %v", err)
	}
}

func TestJWTService_RejectsMissingExpiry(t *testing.T) {
	svc := NewJWTService(testAuthConfig())
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:  tokenIssuer,
			Subject: "u1",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid without exp, got %v", err)
	}
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	svc := NewJWTService(testAuthConfig())
	now := time.Now().UTC()
	claims := Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.Verify(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for HS512, got %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := svc.Verify(unsigned); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for alg none, got %v", err)
	}
}

func TestJWTService_RejectsEmptySecret(t *testing.T) {
	cfg := testAuthConfig()
	cfg.SigningKey = ""
	svc := NewJWTService(cfg)

	if _, _, err := svc.Issue("u1"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on empty secret, got %v", err)
	}
	if _, err := svc.Verify("a.b.c"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid on empty secret, got %v", err)
	}
}
