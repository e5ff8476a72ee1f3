package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/ports"
	"github.com/0xtuytuy/bubblybatch-backend/domain/entities"
	"github.com/0xtuytuy/bubblybatch-backend/domain/events"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
)

// DeviceService manages push-notification device registrations.
type DeviceService struct {
	repo      *persistence.Repository
	publisher ports.EventPublisher
	logger    *zap.Logger
}

// NewDeviceService creates the device service.
func NewDeviceService(repo *persistence.Repository, publisher ports.EventPublisher, logger *zap.Logger) *DeviceService {
	return &DeviceService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// RegisterDeviceInput is a push registration from a client app.
type RegisterDeviceInput struct {
	DeviceID  string `json:"deviceId" validate:"required"`
	Platform  string `json:"platform" validate:"required,oneof=ios android"`
	PushToken string `json:"pushToken" validate:"required"`
}

// Register upserts a device registration. Re-registering the same device
// replaces its token.
func (s *DeviceService) Register(ctx context.Context, userID string, input RegisterDeviceInput) (*entities.Device, error) {
	device, err := entities.NewDevice(input.DeviceID, userID, input.Platform, input.PushToken)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpsertDevice(ctx, device); err != nil {
		return nil, err
	}

	if pubErr := s.publisher.Publish(ctx, events.NewDeviceRegistered(device.DeviceID, userID, device.Platform)); pubErr != nil {
		s.logger.Error("Failed to publish event", zap.Error(pubErr))
	}

	s.logger.Info("Device registered",
		zap.String("deviceID", device.DeviceID),
		zap.String("platform", device.Platform),
	)
	return device, nil
}

// List returns the user's registered devices.
func (s *DeviceService) List(ctx context.Context, userID string) ([]*entities.Device, error) {
	return s.repo.ListDevices(ctx, userID)
}

// Unregister physically removes a device registration. Removing an unknown
// device is a no-op.
func (s *DeviceService) Unregister(ctx context.Context, userID, deviceID string) error {
	return s.repo.DeleteDevice(ctx, userID, deviceID)
}
