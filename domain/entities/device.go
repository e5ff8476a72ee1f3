package entities

import (
	"time"

	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
)

// Device is a push-notification registration. Registration is an upsert keyed
// by deviceID; unregistration physically deletes the item.
type Device struct {
	DeviceID  string    `json:"deviceId"`
	UserID    string    `json:"userId"`
	Platform  string    `json:"platform"`
	PushToken string    `json:"pushToken"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewDevice creates a device registration with validation.
func NewDevice(deviceID, userID, platform, pushToken string) (*Device, error) {
	if deviceID == "" {
		return nil, pkgerrors.NewValidationError("deviceID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if pushToken == "" {
		return nil, pkgerrors.NewValidationError("pushToken cannot be empty")
	}
	if platform != "ios" && platform != "android" {
		return nil, pkgerrors.NewValidationError("platform must be ios or android")
	}

	return &Device{
		DeviceID:  deviceID,
		UserID:    userID,
		Platform:  platform,
		PushToken: pushToken,
		CreatedAt: time.Now().UTC(),
	}, nil
}
