package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
)

func TestDeviceService_RegisterAndList(t *testing.T) {
	ctx := context.Background()
	publisher := &fakePublisher{}
	svc := NewDeviceService(newTestRepository(), publisher, zap.NewNop())

	_, err := svc.Register(ctx, "u1", RegisterDeviceInput{
		DeviceID:  "d1",
		Platform:  "ios",
		PushToken: "token-1",
	})
	require.NoError(t, err)

	// Same device again replaces the token instead of duplicating.
	_, err = svc.Register(ctx, "u1", RegisterDeviceInput{
		DeviceID:  "d1",
		Platform:  "ios",
		PushToken: "token-2",
	})
	require.NoError(t, err)

	devices, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "token-2", devices[0].PushToken)
	assert.Contains(t, publisher.types(), "device.registered")
}

func TestDeviceService_RegisterInvalidPlatform(t *testing.T) {
	ctx := context.Background()
	svc := NewDeviceService(newTestRepository(), &fakePublisher{}, zap.NewNop())

	_, err := svc.Register(ctx, "u1", RegisterDeviceInput{
		DeviceID:  "d1",
		Platform:  "windows",
		PushToken: "token",
	})

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestDeviceService_Unregister(t *testing.T) {
	ctx := context.Background()
	svc := NewDeviceService(newTestRepository(), &fakePublisher{}, zap.NewNop())

	_, err := svc.Register(ctx, "u1", RegisterDeviceInput{
		DeviceID:  "d1",
		Platform:  "android",
		PushToken: "token",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Unregister(ctx, "u1", "d1"))

	devices, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, devices)

	// Unknown device is a no-op, not an error.
	assert.NoError(t, svc.Unregister(ctx, "u1", "ghost"))
}
