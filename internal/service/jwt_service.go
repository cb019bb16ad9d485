package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"translation-api/internal/config"
)

const (
	defaultTokenTTL = 30 * 24 * time.Hour
	tokenIssuer     = "translation-api"
)

// JWTService emite y valida tokens JWT. No guarda estado: la validez sale de
// la firma y la expiración.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

func NewJWTService(cfg config.AuthConfig) *JWTService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTService{
		secret: []byte(cfg.SigningKey),
		ttl:    ttl,
		issuer: tokenIssuer,
		now:    time.Now,
	}
}

// Issue firma un token para subjectID y devuelve su expiración absoluta.
func (s *JWTService) Issue(subjectID string) (string, time.Time, error) {
	if len(s.secret) == 0 || strings.TrimSpace(subjectID) == "" {
		return "", time.Time{}, ErrTokenInvalid
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	claims := Claims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify devuelve el subject del token. ErrTokenExpired solo se reporta
// cuando la firma es válida.
func (s *JWTService) Verify(tokenString string) (string, error) {
	if strings.TrimSpace(tokenString) == "" {
		return "", ErrTokenMissing
	}
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return "", err
	}
	if !s.isValidClaims(claims) {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func (s *JWTService) parseToken(tokenString string) (Claims, error) {
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *JWTService) isValidClaims(claims Claims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
