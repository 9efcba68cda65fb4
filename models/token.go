package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a cached bearer credential for an OAuth2-style provider.
// It is owned by the adapter's token cache, mutated only by refresh, and must
// never cross the adapter boundary.
type AccessToken struct {
	// Value is the opaque bearer token string.
	Value string

	// ExpiresAt is the instant the token stops being accepted upstream.
	ExpiresAt time.Time
}

// Stale reports whether the token needs refreshing at the given time,
// applying margin as a safety window before the hard expiry.
func (t AccessToken) Stale(now time.Time, margin time.Duration) bool {
	return t.Value == "" || !now.Add(margin).Before(t.ExpiresAt)
}

// Token wraps the caller's JWT identity token. The engine never issues
// tokens; it only validates those presented by callers of the HTTP API.
//
// SignedString holds the compact serialized form (header.payload.signature),
// UserID is a cached, parsed copy of the "sub" claim.
type Token struct {
	// Token is the underlying JWT used for claim inspection. Excluded from
	// JSON serialization because only the compact string form is meaningful
	// outside the server process.
	*jwt.Token `json:"-"`

	// RegisteredClaims provides access to the standard JWT claim set
	// (sub, exp, iat, nbf, iss, aud, jti) as defined by RFC 7519.
	jwt.RegisteredClaims

	// SignedString is the compact JWS representation of the token.
	SignedString string `json:"-"`

	// UserID is the caller identifier extracted from the "sub" claim.
	UserID int64 `json:"-"`
}

// GetUserID extracts the caller identifier from the token's "sub" claim and
// parses it as a base-10 int64.
func (t *Token) GetUserID() (int64, error) {
	sub, err := t.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("error extracting UserID from token: %w", err)
	}

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error converting UserID from token to int64: %w", err)
	}

	return userID, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *Token) String() string {
	return t.SignedString
}
