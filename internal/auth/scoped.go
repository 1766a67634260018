package auth

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// scopedIssuer is the iss claim stamped into every scoped write token.
const scopedIssuer = "hostdrop"

// scopedClaims are the claims carried by a folder-scoped write token.
type scopedClaims struct {
	// Folder is the single logical folder the token grants write access to.
	Folder string `json:"folder"`

	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies folder-scoped write tokens.
//
// Tokens let automation clients write one folder without holding the API key
// or a host credential. They are HMAC-signed with a process-level secret; when
// the secret is generated rather than configured, tokens do not survive a
// restart.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer signing with secret, with every minted
// token valid for ttl.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: secret,
		ttl:    ttl,
	}
}

// NewRandomSecret generates a signing secret for issuers without a configured one.
func NewRandomSecret() ([]byte, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate token secret: %w", err)
	}
	return secret, nil
}

// Issue mints a signed token granting write access to folder until the TTL
// elapses. Returns the compact token and its expiry.
func (i *TokenIssuer) Issue(folder string) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(i.ttl)

	claims := scopedClaims{
		Folder: folder,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    scopedIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign scoped token: %w", err)
	}

	return token, expires, nil
}

// Verify checks a token's signature, expiry, and issuer, and returns the
// folder it grants. A failure only means the credential is not a usable
// scoped token; callers fall through to the other credential paths.
func (i *TokenIssuer) Verify(token string) (string, error) {
	var claims scopedClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(scopedIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("parse scoped token: %w", err)
	}

	if claims.Folder == "" {
		return "", fmt.Errorf("scoped token carries no folder")
	}

	return claims.Folder, nil
}
