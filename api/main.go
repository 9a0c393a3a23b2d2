package api

import (
	"context"
	"fmt"

	"github.com/brpaz/echozap"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tidepool-org/labreport/catalog"
	"github.com/tidepool-org/labreport/config"
	"github.com/tidepool-org/labreport/documents"
	"github.com/tidepool-org/labreport/errors"
	"github.com/tidepool-org/labreport/formulas"
	"github.com/tidepool-org/labreport/logger"
	"github.com/tidepool-org/labreport/profiles"
	"github.com/tidepool-org/labreport/ranges"
	"github.com/tidepool-org/labreport/results"
	"github.com/tidepool-org/labreport/visits"
)

func Start(e *echo.Echo, cfg *config.Config, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(fmt.Sprintf(":%d", cfg.HttpPort)); err != nil {
					e.Logger.Print(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

func SetReady(healthCheck *HealthCheck, provider catalog.Provider, lifecycle fx.Lifecycle) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// The catalog must be readable before the service accepts requests
			if _, err := provider.Get(ctx); err != nil {
				return err
			}

			healthCheck.SetReady(true)
			return nil
		},
		OnStop: nil,
	})
}

func NewServer(handler *Handler, healthCheck *HealthCheck, zapLogger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	skipper := RouteSkipper([]string{"/ready"})

	e.Use(middleware.Recover())
	e.Use(WithSkipper(skipper, echozap.ZapLogger(zapLogger)))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Skipper: skipper,
		Limit:   "4M",
	}))

	e.HTTPErrorHandler = errors.CustomHTTPErrorHandler

	e.GET("/ready", healthCheck.Ready)
	RegisterHandlers(e, handler)

	return e
}

func RegisterHandlers(e *echo.Echo, handler *Handler) {
	v1 := e.Group("/v1")
	v1.POST("/ranges/parse", handler.ParseRange)
	v1.POST("/classifications", handler.Classify)
	v1.POST("/documents", handler.ComposeDocument)
	v1.POST("/documents/xlsx", handler.RenderDocument)
}

// Dependencies returns the dependency graph shared by the service and the command
// line tools.
func Dependencies() []fx.Option {
	return []fx.Option{
		fx.Provide(
			config.NewConfig,
			logger.NewProductionLogger,
			logger.Suggar,
			ranges.NewConfig,
			ranges.NewParser,
			results.NewConfig,
			results.NewClassifier,
			profiles.NewConfig,
			profiles.NewGrouper,
			formulas.NewConfig,
			formulas.NewEvaluator,
			documents.NewComposer,
			visits.NewProcessor,
			catalog.NewFileProvider,
		),
	}
}

func MainLoop() {
	fx.New(
		append(
			Dependencies(),
			fx.Provide(
				NewHealthCheck,
				NewHandler,
				NewServer,
			),
			fx.Invoke(SetReady),
			fx.Invoke(Start),
		)...,
	).Run()
}
