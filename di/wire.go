//go:build wireinject
// +build wireinject

package di

import (
	"openrun/config"
	"openrun/infras/jwt"
	"openrun/infras/kafka"
	"openrun/infras/otel"
	"openrun/infras/postgres"
	"openrun/infras/redis"
	"openrun/infras/s3"
	"openrun/internal/adapter/xticket"
	"openrun/internal/archive"
	"openrun/internal/engine"
	"openrun/internal/notify"
	"openrun/permissions"
	"openrun/shared/cache"
	"openrun/transport/http"
	"openrun/transport/http/middleware"
	"openrun/transport/http/router"

	accountRepository "openrun/internal/domains/account/repository"
	accountService "openrun/internal/domains/account/service"
	authRepository "openrun/internal/domains/auth/repository"
	authService "openrun/internal/domains/auth/service"
	scheduleRepository "openrun/internal/domains/schedule/repository"
	scheduleService "openrun/internal/domains/schedule/service"
	seatRepository "openrun/internal/domains/seat/repository"
	seatService "openrun/internal/domains/seat/service"
	siteRepository "openrun/internal/domains/site/repository"
	siteService "openrun/internal/domains/site/service"

	accountHandler "openrun/internal/handlers/account"
	authHandler "openrun/internal/handlers/auth"
	monitoringHandler "openrun/internal/handlers/monitoring"
	scheduleHandler "openrun/internal/handlers/schedule"
	seatHandler "openrun/internal/handlers/seat"
	siteHandler "openrun/internal/handlers/site"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var authDomain = wire.NewSet(
	authRepository.New,
	authService.New,
)

var siteDomain = wire.NewSet(
	siteRepository.New,
	siteService.New,
)

var accountDomain = wire.NewSet(
	accountRepository.New,
	accountService.New,
)

var seatDomain = wire.NewSet(
	seatRepository.New,
	seatService.New,
)

var scheduleDomain = wire.NewSet(
	scheduleRepository.New,
	scheduleService.New,
)

var domains = wire.NewSet(
	authDomain,
	siteDomain,
	accountDomain,
	seatDomain,
	scheduleDomain,
)

var reservationEngine = wire.NewSet(
	xticket.NewFactory,
	engine.NewWarmer,
	notify.New,
	archive.New,
	engine.New,
	wire.Bind(new(scheduleService.Canceller), new(engine.Engine)),
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	siteHandler.New,
	accountHandler.New,
	seatHandler.New,
	scheduleHandler.New,
	monitoringHandler.New,
	router.New,
)

func InitializeService() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		reservationEngine,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
