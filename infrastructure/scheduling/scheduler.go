// Package scheduling creates one-shot delivery schedules for reminders on
// AWS EventBridge Scheduler.
package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/ports"
)

// EventBridgeScheduler implements ports.ReminderScheduler on EventBridge
// Scheduler one-shot schedules.
type EventBridgeScheduler struct {
	client    *scheduler.Client
	groupName string
	targetArn string
	roleArn   string
	logger    *zap.Logger
}

// NewEventBridgeScheduler creates a scheduler for the given schedule group.
func NewEventBridgeScheduler(
	client *scheduler.Client,
	groupName, targetArn, roleArn string,
	logger *zap.Logger,
) ports.ReminderScheduler {
	return &EventBridgeScheduler{
		client:    client,
		groupName: groupName,
		targetArn: targetArn,
		roleArn:   roleArn,
		logger:    logger,
	}
}

// Schedule creates a one-shot schedule firing at the given time. The schedule
// deletes itself after firing, so only cancelled reminders need an explicit
// DeleteSchedule.
func (s *EventBridgeScheduler) Schedule(ctx context.Context, reminderID, userID string, at time.Time, payload interface{}) (string, error) {
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schedule payload: %w", err)
	}

	name := fmt.Sprintf("reminder-%s", reminderID)

	// at() expressions take a timezone-less timestamp, interpreted as UTC.
	expression := fmt.Sprintf("at(%s)", at.UTC().Format("2006-01-02T15:04:05"))

	_, err = s.client.CreateSchedule(ctx, &scheduler.CreateScheduleInput{
		Name:                  aws.String(name),
		GroupName:             aws.String(s.groupName),
		ScheduleExpression:    aws.String(expression),
		ActionAfterCompletion: types.ActionAfterCompletionDelete,
		FlexibleTimeWindow: &types.FlexibleTimeWindow{
			Mode: types.FlexibleTimeWindowModeOff,
		},
		Target: &types.Target{
			Arn:     aws.String(s.targetArn),
			RoleArn: aws.String(s.roleArn),
			Input:   aws.String(string(input)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create schedule %s: %w", name, err)
	}

	s.logger.Info("Reminder schedule created",
		zap.String("schedule", name),
		zap.String("userID", userID),
		zap.Time("at", at),
	)

	return name, nil
}

// Cancel deletes a schedule. A schedule that already fired deleted itself, so
// not-found is treated as success.
func (s *EventBridgeScheduler) Cancel(ctx context.Context, scheduleName string) error {
	_, err := s.client.DeleteSchedule(ctx, &scheduler.DeleteScheduleInput{
		Name:      aws.String(scheduleName),
		GroupName: aws.String(s.groupName),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			s.logger.Debug("Schedule already gone", zap.String("schedule", scheduleName))
			return nil
		}
		return fmt.Errorf("failed to delete schedule %s: %w", scheduleName, err)
	}

	s.logger.Info("Reminder schedule cancelled", zap.String("schedule", scheduleName))
	return nil
}
