package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDeviceIDFromContext(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), DeviceIDCtxKey, "device-a")

		got, ok := GetDeviceIDFromContext(ctx)

		assert.True(t, ok)
		assert.Equal(t, "device-a", got)
	})

	t.Run("missing", func(t *testing.T) {
		got, ok := GetDeviceIDFromContext(context.Background())

		assert.False(t, ok)
		assert.Empty(t, got)
	})

	t.Run("wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), DeviceIDCtxKey, 42)

		_, ok := GetDeviceIDFromContext(ctx)

		assert.False(t, ok)
	})
}

func TestGetCompanyIDFromContext(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), CompanyIDCtxKey, "acme")

		got, ok := GetCompanyIDFromContext(ctx)

		assert.True(t, ok)
		assert.Equal(t, "acme", got)
	})

	t.Run("missing", func(t *testing.T) {
		got, ok := GetCompanyIDFromContext(context.Background())

		assert.False(t, ok)
		assert.Empty(t, got)
	})
}
