package util

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Metadata is the provider-managed public metadata embedded in session claims.
type Metadata struct {
	Role string `json:"role,omitempty"`
}

// Claims is the session token issued by the identity provider.
type Claims struct {
	PublicMetadata Metadata `json:"publicMetadata"`
	jwt.RegisteredClaims
}

var (
	hmacMethods  = []string{"HS256", "HS384", "HS512"}
	rsaMethods   = []string{"RS256", "RS384", "RS512"}
	ecdsaMethods = []string{"ES256", "ES384", "ES512"}
)

// TokenVerifier checks session tokens against a single key. The key kind
// fixes the accepted algorithm family, so an HMAC token can never be
// checked against a public key or the reverse.
type TokenVerifier struct {
	key     interface{}
	methods []string
}

// NewTokenVerifier takes a PEM-encoded RSA or ECDSA public key, or any
// other string as an HMAC shared secret.
func NewTokenVerifier(keyMaterial string) (*TokenVerifier, error) {
	if keyMaterial == "" {
		return nil, errors.New("session key is empty")
	}
	block, _ := pem.Decode([]byte(keyMaterial))
	if block == nil {
		return &TokenVerifier{key: []byte(keyMaterial), methods: hmacMethods}, nil
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return &TokenVerifier{key: k, methods: rsaMethods}, nil
	case *ecdsa.PublicKey:
		return &TokenVerifier{key: k, methods: ecdsaMethods}, nil
	default:
		return nil, fmt.Errorf("unsupported public key type %T", pub)
	}
}

// Verify parses tokenString and returns its claims. Tokens must carry an
// expiry and a subject.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return v.key, nil },
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}
