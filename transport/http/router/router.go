package router

import (
	"openrun/internal/handlers/account"
	"openrun/internal/handlers/auth"
	"openrun/internal/handlers/monitoring"
	"openrun/internal/handlers/schedule"
	"openrun/internal/handlers/seat"
	"openrun/internal/handlers/site"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth       auth.Handler
	Site       site.Handler
	Account    account.Handler
	Seat       seat.Handler
	Schedule   schedule.Handler
	Monitoring monitoring.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.Site.Router(routerGroup)
		r.DomainHandlers.Account.Router(routerGroup)
		r.DomainHandlers.Seat.Router(routerGroup)
		r.DomainHandlers.Schedule.Router(routerGroup)
		r.DomainHandlers.Monitoring.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
