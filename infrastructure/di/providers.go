package di

import (
	"context"
	"fmt"
	"net/http"

	"invitelinks-backend/application/ports"
	"invitelinks-backend/application/services"
	"invitelinks-backend/infrastructure/cache"
	"invitelinks-backend/infrastructure/config"
	dynamodbrepo "invitelinks-backend/infrastructure/persistence/dynamodb"
	"invitelinks-backend/interfaces/http/rest"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// ProvideSharedCache creates the process-wide shared aggregate cache
func ProvideSharedCache(logger *zap.Logger) ports.AggregateCache {
	return cache.NewSharedAggregateCache(logger)
}

// ProvideUpdaterFactory creates the per-invocation updater factory
func ProvideUpdaterFactory(awsCfg aws.Config, cfg *config.Config, sharedCache ports.AggregateCache, logger *zap.Logger) services.UpdaterFactory {
	return &updaterFactory{
		cfg:    cfg,
		logger: logger,
		base:   buildUpdater(awsCfg, cfg, sharedCache, logger),
	}
}

// ProvideRouter creates the HTTP router
func ProvideRouter(cfg *config.Config, factory services.UpdaterFactory, logger *zap.Logger) http.Handler {
	return rest.NewRouter(cfg, factory, logger).Setup()
}

// updaterFactory hands out the process-wide updater, or builds a fresh one
// around a credentials override.
type updaterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	base   *services.Updater
}

// Updater returns the updater for one invocation. A credentials override
// gets its own clients and its own cache: rows cached under the default
// credentials are not valid for another identity.
func (f *updaterFactory) Updater(ctx context.Context, creds *ports.StaticCredentials) (*services.Updater, error) {
	if creds == nil {
		return f.base, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, ""),
		),
	}
	if f.cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(f.cfg.AWSRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for credential override: %w", err)
	}

	return buildUpdater(awsCfg, f.cfg, cache.NewSharedAggregateCache(f.logger), f.logger), nil
}

// buildUpdater assembles the repositories and service around one client set.
func buildUpdater(awsCfg aws.Config, cfg *config.Config, sharedCache ports.AggregateCache, logger *zap.Logger) *services.Updater {
	primary := awsdynamodb.NewFromConfig(awsCfg)

	var mirror dynamodbrepo.API
	if cfg.SecondaryRegion != "" {
		mirrorCfg := awsCfg
		mirrorCfg.Region = cfg.SecondaryRegion
		mirror = awsdynamodb.NewFromConfig(mirrorCfg)
	}

	accountRepo := dynamodbrepo.NewAccountRepository(primary, logger)
	aggregateRepo := dynamodbrepo.NewAggregateRepository(primary, mirror, cfg.DynamoDBTable, sharedCache, logger)

	return services.NewUpdater(accountRepo, aggregateRepo, cfg.UpdateDelay(), logger)
}
