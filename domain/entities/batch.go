package entities

import (
	"time"

	pkgerrors "github.com/0xtuytuy/bubblybatch-backend/pkg/errors"
)

// Stage identifies which fermentation phase a batch is in.
type Stage string

const (
	StageOneOpen    Stage = "stage1_open"
	StageTwoBottled Stage = "stage2_bottled"
)

// Valid reports whether the stage is one this backend knows about.
func (s Stage) Valid() bool {
	return s == StageOneOpen || s == StageTwoBottled
}

// Status is the lifecycle state of a batch. Batches are never physically
// deleted; "delete" is a transition to StatusArchived.
type Status string

const (
	StatusActive   Status = "active"
	StatusInFridge Status = "in_fridge"
	StatusReady    Status = "ready"
	StatusArchived Status = "archived"
)

// Valid reports whether the status is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInFridge, StatusReady, StatusArchived:
		return true
	}
	return false
}

// Batch is a single fermentation run owned by exactly one user.
type Batch struct {
	BatchID      string    `json:"batchId"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Status       Status    `json:"status"`
	StartedAt    time.Time `json:"startedAt"`
	TargetHours  *float64  `json:"targetHours,omitempty"`
	TemperatureC *float64  `json:"temperatureC,omitempty"`
	SugarGrams   *float64  `json:"sugarGrams,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	PhotoKeys    []string  `json:"photoKeys,omitempty"`
	Public       bool      `json:"public"`
	PublicNote   string    `json:"publicNote,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    string    `json:"updatedAt,omitempty"`
}

// NewBatch creates a batch with business rule validation.
func NewBatch(batchID, userID, name string, stage Stage, startedAt time.Time, targetHours *float64) (*Batch, error) {
	if batchID == "" {
		return nil, pkgerrors.NewValidationError("batchID cannot be empty")
	}
	if userID == "" {
		return nil, pkgerrors.NewValidationError("userID cannot be empty")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("name cannot be empty")
	}
	if !stage.Valid() {
		return nil, pkgerrors.NewValidationError("unknown stage: " + string(stage))
	}
	if targetHours != nil && *targetHours <= 0 {
		return nil, pkgerrors.NewValidationError("targetHours must be positive")
	}
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	return &Batch{
		BatchID:     batchID,
		UserID:      userID,
		Name:        name,
		Stage:       stage,
		Status:      StatusActive,
		StartedAt:   startedAt,
		TargetHours: targetHours,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// IsArchived reports whether the batch has been soft-deleted.
func (b *Batch) IsArchived() bool {
	return b.Status == StatusArchived
}
