package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the display fields of a session token. They are decoded without
// signature verification; the API remains the authority on validity.
type Claims struct {
	Subject   string    `json:"sub"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// IsExpired reports whether the token's exp lies before now. Tokens without exp never expire.
func (c Claims) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ParseClaims decodes the claims of token.
func ParseClaims(token string) (Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, ErrMalformedToken.Wrap(err)
	}

	var c Claims
	if sub, err := mapClaims.GetSubject(); err == nil {
		c.Subject = sub
	}
	if name, ok := mapClaims["name"].(string); ok {
		c.Name = name
	}
	if email, ok := mapClaims["email"].(string); ok {
		c.Email = email
	}
	if role, ok := mapClaims["role"].(string); ok {
		c.Role = role
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
