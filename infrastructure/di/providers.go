// Package di wires the application together with google/wire.
package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awsscheduler "github.com/aws/aws-sdk-go-v2/service/scheduler"
	"go.uber.org/zap"

	"github.com/0xtuytuy/bubblybatch-backend/application/ports"
	"github.com/0xtuytuy/bubblybatch-backend/application/services"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/config"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/media"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/messaging/eventbridge"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence/dynamodb"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/persistence/store"
	"github.com/0xtuytuy/bubblybatch-backend/infrastructure/scheduling"
	"github.com/0xtuytuy/bubblybatch-backend/pkg/observability"
)

// ProvideLogger creates the logger for the configured environment.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig loads the default AWS configuration.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client.
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideSchedulerClient creates an EventBridge Scheduler client.
func ProvideSchedulerClient(awsCfg aws.Config) *awsscheduler.Client {
	return awsscheduler.NewFromConfig(awsCfg)
}

// ProvideS3Client creates an S3 client.
func ProvideS3Client(awsCfg aws.Config) *awss3.Client {
	return awss3.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client.
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTracer creates the X-Ray tracer, or a disabled one when tracing is
// off.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	if !cfg.EnableTracing {
		return nil
	}
	return observability.NewTracer("bubblybatch-backend")
}

// ProvideMetrics creates the CloudWatch metrics sink. When metrics are
// disabled the sink is a no-op.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("BubblyBatch/%s", cfg.Environment)
	if !cfg.EnableMetrics {
		return observability.NewMetrics(namespace, nil, logger)
	}
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideStore creates the single-table store.
func ProvideStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger, tracer *observability.Tracer) store.Store {
	return dynamodb.NewStore(client, cfg.DynamoDBTable, cfg.IndexName, logger, tracer)
}

// ProvideRepository creates the entity-level repository.
func ProvideRepository(s store.Store, logger *zap.Logger) *persistence.Repository {
	return persistence.NewRepository(s, logger)
}

// ProvideEventPublisher creates the EventBridge publisher.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideReminderScheduler creates the EventBridge Scheduler adapter.
func ProvideReminderScheduler(client *awsscheduler.Client, cfg *config.Config, logger *zap.Logger) ports.ReminderScheduler {
	return scheduling.NewEventBridgeScheduler(
		client,
		cfg.ScheduleGroupName,
		cfg.ScheduleTargetArn,
		cfg.ScheduleRoleArn,
		logger,
	)
}

// ProvideMediaStore creates the S3 media store.
func ProvideMediaStore(client *awss3.Client, cfg *config.Config, logger *zap.Logger) ports.MediaStore {
	return media.NewS3MediaStore(client, cfg.PhotoBucket, logger)
}

// ProvideBatchService creates the batch service.
func ProvideBatchService(
	repo *persistence.Repository,
	publisher ports.EventPublisher,
	mediaStore ports.MediaStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.BatchService {
	return services.NewBatchService(repo, publisher, mediaStore, metrics, logger)
}

// ProvideReminderService creates the reminder service.
func ProvideReminderService(
	repo *persistence.Repository,
	scheduler ports.ReminderScheduler,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.ReminderService {
	return services.NewReminderService(repo, scheduler, publisher, metrics, logger)
}

// ProvideDeviceService creates the device service.
func ProvideDeviceService(repo *persistence.Repository, publisher ports.EventPublisher, logger *zap.Logger) *services.DeviceService {
	return services.NewDeviceService(repo, publisher, logger)
}

// ProvideExportService creates the export service.
func ProvideExportService(repo *persistence.Repository, logger *zap.Logger) *services.ExportService {
	return services.NewExportService(repo, logger)
}

// ProvideShareService creates the share service.
func ProvideShareService(repo *persistence.Repository, logger *zap.Logger) *services.ShareService {
	return services.NewShareService(repo, logger)
}
