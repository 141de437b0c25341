package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the fixed validity window of an access token.
const DefaultTokenTTL = 3000000 * time.Second

var ErrInvalidToken = errors.New("invalid auth token")

// Claims is what a verified token asserts.
type Claims struct {
	AccountID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenSigner issues and verifies bearer tokens binding an account id.
type TokenSigner interface {
	Sign(accountID string) (string, error)
	Verify(token string) (Claims, error)
}

type tokenClaims struct {
	AccountID string `json:"id"`
	jwt.RegisteredClaims
}

// JWTSigner signs HS256 tokens with a server-held secret.
type JWTSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTSigner builds a signer; a non-positive ttl selects DefaultTokenTTL.
func NewJWTSigner(secret string, ttl time.Duration) *JWTSigner {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (s *JWTSigner) WithClock(now func() time.Time) *JWTSigner {
	cp := *s
	cp.now = now
	return &cp
}

func (s *JWTSigner) Sign(accountID string) (string, error) {
	if strings.TrimSpace(accountID) == "" {
		return "", errors.New("sign token: empty account id")
	}
	issued := s.now()
	claims := tokenClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *JWTSigner) Verify(raw string) (Claims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.AccountID) == "" {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{AccountID: claims.AccountID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
