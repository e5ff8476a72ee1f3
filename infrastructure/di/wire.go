//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/ports"
	"github.com/0xtuytuy/bubblybatch-backend/application/services"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/config"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence/store"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	Store           store.Store
	Repository      *persistence.Repository
	EventPublisher  ports.EventPublisher
	Scheduler       ports.ReminderScheduler
	MediaStore      ports.MediaStore
	Metrics         *observability.Metrics
	BatchService    *services.BatchService
	ReminderService *services.ReminderService
	DeviceService   *services.DeviceService
	ExportService   *services.ExportService
	ShareService    *services.ShareService
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideSchedulerClient,
	ProvideS3Client,
	ProvideCloudWatchClient,
	ProvideTracer,
	ProvideMetrics,
	ProvideStore,
	ProvideRepository,
	ProvideEventPublisher,
	ProvideReminderScheduler,
	ProvideMediaStore,
	ProvideBatchService,
	ProvideReminderService,
	ProvideDeviceService,
	ProvideExportService,
	ProvideShareService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
