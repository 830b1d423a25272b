package utils

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Audience identifies which of the two token populations a credential
// belongs to. Each audience has its own signing secret, so a token minted for
// one audience can never verify under the other.
type Audience string

const (
	AudienceClient Audience = "client"
	AudienceAdmin  Audience = "admin"
)

// Session lifetimes. The admin credential is deliberately short-lived.
const (
	clientTokenTTL = 30 * 24 * time.Hour
	adminTokenTTL  = 24 * time.Hour
)

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrUnknownAudience  = errors.New("unknown token audience")
	ErrWrongSigningAlgo = errors.New("unexpected token signing method")
)

// Claims carried by both token audiences. UserID is empty for admin tokens;
// the admin identity is environment-configured, not stored.
type Claims struct {
	UserID string `json:"id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.StandardClaims
}

// TokenIssuer signs and verifies bearer tokens for both audiences behind one
// abstraction, keyed by distinct secrets.
type TokenIssuer struct {
	secrets map[Audience][]byte
	ttls    map[Audience]time.Duration
}

// NewTokenIssuer builds an issuer from the two configured signing secrets.
func NewTokenIssuer(clientSecret, adminSecret string) *TokenIssuer {
	return &TokenIssuer{
		secrets: map[Audience][]byte{
			AudienceClient: []byte(clientSecret),
			AudienceAdmin:  []byte(adminSecret),
		},
		ttls: map[Audience]time.Duration{
			AudienceClient: clientTokenTTL,
			AudienceAdmin:  adminTokenTTL,
		},
	}
}

// Generate mints a signed token for the given audience.
func (t *TokenIssuer) Generate(aud Audience, userID, email, role string) (string, error) {
	secret, ok := t.secrets[aud]
	if !ok {
		return "", ErrUnknownAudience
	}
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			Audience:  string(aud),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(t.ttls[aud]).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Parse verifies a token against the expected audience's secret and returns
// its claims. A token signed for the other audience fails signature
// verification here; a token with a mismatched audience claim is rejected
// even if the signature were to check out.
func (t *TokenIssuer) Parse(aud Audience, tokenStr string) (*Claims, error) {
	secret, ok := t.secrets[aud]
	if !ok {
		return nil, ErrUnknownAudience
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrWrongSigningAlgo
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Audience != string(aud) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
