package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/pointledger/internal/adapter/events"
	"github.com/polkiloo/pointledger/internal/app"
	"github.com/polkiloo/pointledger/internal/config"
	"github.com/polkiloo/pointledger/internal/logger"
	"github.com/polkiloo/pointledger/internal/server/http/handlers"
	"github.com/polkiloo/pointledger/internal/server/http/router"
	"github.com/polkiloo/pointledger/internal/storage"
	"github.com/polkiloo/pointledger/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		storage.Module,
		events.Module,
		usecase.Module,
		fx.Provide(
			func(f *app.PointFacade) handlers.PointFacade { return f },
			func(f *app.PointFacade) handlers.HealthChecker { return f },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
