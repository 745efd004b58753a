package models

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// DeviceToken wraps a device JWT with convenience accessors for the sync
// transport.
//
// It embeds [jwt.Token] for low-level token operations (signing, parsing)
// and [jwt.RegisteredClaims] for standard claim access. The device ID rides
// in the "sub" claim and the company scope in a private "company_id" claim.
//
// SignedString holds the compact serialized form of the token ready to be
// transmitted in the Authorization header.
type DeviceToken struct {
	// Token is the underlying JWT used for signing and claim inspection.
	// Excluded from JSON serialization because only the compact string
	// form is meaningful outside the process.
	*jwt.Token `json:"-"`

	// RegisteredClaims provides access to the standard JWT claim set
	// (sub, exp, iat, nbf, iss, aud, jti) as defined by RFC 7519.
	jwt.RegisteredClaims

	// CompanyID is the company scope claim. Every sync request carries a
	// company ID; the relay rejects requests whose token names a
	// different one.
	CompanyID string `json:"company_id,omitempty"`

	// SignedString is the compact JWS representation of the token.
	// Excluded from JSON serialization; use [DeviceToken.String].
	SignedString string `json:"-"`

	// DeviceID is the device identifier extracted from the "sub" claim.
	// Excluded from JSON serialization; it is a server-side cache.
	DeviceID string `json:"-"`
}

// GetDeviceID extracts the device identifier from the token's "sub" claim.
//
// Returns an error if the subject claim is missing or empty.
func (t *DeviceToken) GetDeviceID() (string, error) {
	deviceID, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting device ID from token: %w", err)
	}
	if deviceID == "" {
		return "", fmt.Errorf("empty device ID in token subject")
	}

	return deviceID, nil
}

// String returns the compact JWS serialization of the token.
// It implements the [fmt.Stringer] interface.
func (t *DeviceToken) String() string {
	return t.SignedString
}
