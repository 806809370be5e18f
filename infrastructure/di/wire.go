//go:build wireinject
// +build wireinject

package di

import (
	"context"
	"net/http"

	"invitelinks-backend/application/ports"
	"invitelinks-backend/application/services"
	"invitelinks-backend/infrastructure/config"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Cache   ports.AggregateCache
	Factory services.UpdaterFactory
	Router  http.Handler
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideSharedCache,
	ProvideUpdaterFactory,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
