package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mvoronkov/go-ledger-sync/models"
)

// GenerateDeviceToken creates a signed HMAC-SHA256 JWT for one device.
//
// The token includes the following claims:
//   - Issuer     (iss): identifies the relay that issued the token
//   - Subject    (sub): the device ID
//   - company_id      : the company scope the token is valid for
//   - IssuedAt   (iat): the current time
//   - ExpiresAt  (exp): the current time plus tokenDuration
//
// All parameters are required. Returns an error if any of them are empty
// or zero.
func GenerateDeviceToken(issuer, deviceID, companyID string, tokenDuration time.Duration, signKey string) (models.DeviceToken, error) {
	if issuer == "" || deviceID == "" || companyID == "" || tokenDuration == 0 || signKey == "" {
		return models.DeviceToken{}, errors.New("invalid params for generating device token")
	}

	now := time.Now()
	claims := &models.DeviceToken{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   deviceID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		CompanyID: companyID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(signKey))
	if err != nil {
		return models.DeviceToken{}, fmt.Errorf("error occurred during signing device token: %w", err)
	}

	claims.Token = token
	claims.SignedString = tokenString
	claims.DeviceID = deviceID

	return *claims, nil
}

// ValidateAndParseDeviceToken validates the given JWT string and extracts
// its claims.
//
// Validation includes:
//   - Signature verification using the provided sign key
//   - Issuer (iss) claim check against the provided tokenIssuer
//   - Expiration (exp) claim check
//   - Subject (sub) claim presence (the device ID)
//   - company_id claim presence
//
// Returns the parsed [models.DeviceToken] with DeviceID populated, or an
// error if validation fails or claims are missing.
func ValidateAndParseDeviceToken(tokenString, tokenSignKey, tokenIssuer string) (models.DeviceToken, error) {
	parsed := &models.DeviceToken{}
	token, err := jwt.ParseWithClaims(tokenString, parsed, func(token *jwt.Token) (any, error) {
		return []byte(tokenSignKey), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return models.DeviceToken{}, fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	deviceID, err := parsed.GetDeviceID()
	if err != nil {
		return models.DeviceToken{}, err
	}
	if parsed.CompanyID == "" {
		return models.DeviceToken{}, errors.New("missing company_id claim")
	}

	parsed.Token = token
	parsed.DeviceID = deviceID

	return *parsed, nil
}

func ParseBearerToken(authorizationHeader string) (string, error) {
	parts := strings.Split(strings.TrimSpace(authorizationHeader), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}
