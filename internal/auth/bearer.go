package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MethodBearer marks identities resolved from an Authorization header.
const MethodBearer = "bearer"

// Claims are the JWT claims accepted by the API. The subject is the owner id.
type Claims struct {
	jwt.RegisteredClaims
}

// Bearer issues and validates HS256 tokens.
type Bearer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewBearer returns a Bearer. An empty secret disables it.
func NewBearer(secret, issuer string) *Bearer {
	return &Bearer{secret: []byte(secret), issuer: issuer, now: time.Now}
}

// Issue signs a token for ownerID that expires after ttl.
func (b *Bearer) Issue(ownerID string, ttl time.Duration) (string, error) {
	if len(b.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	if ownerID == "" {
		return "", errors.New("owner id is required")
	}

	now := b.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			Issuer:    b.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(b.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a token and returns its owner id.
func (b *Bearer) Validate(tokenStr string) (string, error) {
	if len(b.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}

	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(b.now),
		jwt.WithExpirationRequired(),
	}
	if b.issuer != "" {
		opts = append(opts, jwt.WithIssuer(b.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return b.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("token subject is required")
	}
	return claims.Subject, nil
}

// Resolve implements Resolver.
func (b *Bearer) Resolve(r *http.Request) (Identity, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Identity{}, false
	}
	scheme, tokenStr, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return Identity{}, false
	}

	owner, err := b.Validate(strings.TrimSpace(tokenStr))
	if err != nil {
		return Identity{}, false
	}
	return Identity{OwnerID: owner, Method: MethodBearer}, true
}
