// Package utils provides general-purpose helper utilities used across
// different parts of the application. Includes tools for working with
// context, type-safe keys, HTTP response writing, HTTP client
// initialization, JWT token generation and validation, and other common
// operations.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// DeviceIDCtxKey is the key used to store the authenticated device
// identifier in the context. Used together with GetDeviceIDFromContext for
// type-safe retrieval.
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.DeviceIDCtxKey, "device-a")
var DeviceIDCtxKey = contextKey("deviceID")

// CompanyIDCtxKey is the key used to store the token's company scope in
// the context.
var CompanyIDCtxKey = contextKey("companyID")

// GetDeviceIDFromContext retrieves the authenticated device identifier
// from the context.
//
// Returns the device ID and an ok flag:
//   - ok == true:  value is found and has the correct string type
//   - ok == false: value is missing or has an unexpected type
func GetDeviceIDFromContext(ctx context.Context) (string, bool) {
	deviceID, ok := ctx.Value(DeviceIDCtxKey).(string)
	return deviceID, ok
}

// GetCompanyIDFromContext retrieves the token's company scope from the
// context.
func GetCompanyIDFromContext(ctx context.Context) (string, bool) {
	companyID, ok := ctx.Value(CompanyIDCtxKey).(string)
	return companyID, ok
}
