package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	errInvalidToken  = errors.New("invalid token")
	errInvalidClaims = errors.New("invalid claims")
)

// Claims is the payload of access and shared-secret tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Audiences keep tokens of one auth mode from passing in another when
// JWT_SECRET is shared.
const (
	AudienceShared  = "smartkanban-shared"
	AudienceAccount = "smartkanban-account"
)

// TokenIssuer signs and verifies HS256 tokens with a fixed lifetime.
type TokenIssuer struct {
	secret   []byte
	ttl      time.Duration
	audience string
	now      func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithAudience returns a copy that stamps aud on issued tokens and
// rejects tokens without it.
func (i *TokenIssuer) WithAudience(aud string) *TokenIssuer {
	c := *i
	c.audience = aud
	return &c
}

func (i *TokenIssuer) GenerateToken(subject, email string) (string, error) {
	now := i.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *TokenIssuer) ParseToken(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	}
	if i.audience != "" {
		opts = append(opts, jwt.WithAudience(i.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, errInvalidToken
	}
	if claims.Subject == "" {
		return nil, errInvalidClaims
	}
	return claims, nil
}
