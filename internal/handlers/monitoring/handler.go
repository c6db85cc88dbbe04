package monitoring

import (
	"net/http"
	"openrun/config"
	"openrun/infras/otel"
	"openrun/infras/postgres"
	"openrun/internal/adapter"
	siteModel "openrun/internal/domains/site/model"
	siteRepository "openrun/internal/domains/site/repository"
	"openrun/internal/engine/clock"
	"openrun/shared"
	"openrun/shared/constant"
	"openrun/shared/failure"
	"openrun/transport/http/response"
	"time"

	"github.com/go-chi/chi/v5"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const queryParamCampingSiteID = "camping_site_id"

type ServerTimeResponse struct {
	CampingSiteID string `json:"camping_site_id"`
	ServerNow     string `json:"server_now"`
	OffsetMS      int64  `json:"offset_ms"`
	RTTMS         int64  `json:"rtt_ms"`
	Samples       int    `json:"samples"`
	Confidence    string `json:"confidence"`
	SampledAt     string `json:"sampled_at"`
}

type Handler struct {
	siteRepo siteRepository.Site
	factory  adapter.Factory
	config   *config.Config
	otel     otel.Otel
	db       *postgres.Connection
	redis    *goRedis.Client
}

func New(siteRepo siteRepository.Site, factory adapter.Factory, config *config.Config, otel otel.Otel, db *postgres.Connection, redis *goRedis.Client) Handler {
	return Handler{
		siteRepo: siteRepo,
		factory:  factory,
		config:   config,
		otel:     otel,
		db:       db,
		redis:    redis,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/monitoring", func(routerGroup chi.Router) {
		routerGroup.Get("/server-time", handler.ServerTime)
	})
	router.Get("/health", handler.Health)
}

// ServerTime measures the clock offset against a camping site's remote server.
// @Summary Measure the remote server clock
// @Description Sample the remote reservation server's clock and report the measured offset, round trip and confidence.
// @Tags Monitoring
// @Accept json
// @Produce json
// @Param camping_site_id query string true "Camping site ID"
// @Success 200 {object} ServerTimeResponse "Measured clock offset"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/monitoring/server-time [get]
// @Security BearerAuth
func (handler *Handler) ServerTime(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ServerTime")
	defer scope.End()

	siteID := r.URL.Query().Get(queryParamCampingSiteID)
	if siteID == "" {
		err := failure.BadRequestFromString("camping_site_id is required")
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	site, err := handler.siteRepo.Get(ctx, shared.FilterByID(siteID, siteModel.FieldID, siteModel.TableName))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get site for server time measurement")

		response.WithError(w, err)

		return
	}

	client, err := handler.factory.ForSite(&site)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("no adapter for site")

		response.WithError(w, failure.BadRequestFromString(err.Error()))

		return
	}

	estimate, err := clock.New(client, handler.config, handler.otel).Measure(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to measure server clock")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Server clock measured successfully")

	response.WithJSON(w, http.StatusOK, ServerTimeResponse{
		CampingSiteID: site.ID,
		ServerNow:     time.Now().Add(estimate.Offset).Format(constant.DateFormat),
		OffsetMS:      estimate.Offset.Milliseconds(),
		RTTMS:         estimate.RTT.Milliseconds(),
		Samples:       estimate.Samples,
		Confidence:    string(estimate.Confidence),
		SampledAt:     estimate.SampledAt.Format(constant.DateFormat),
	})
}

// Health reports whether the service and its backing stores are reachable.
// @Summary Health check
// @Description Report service health, including database and cache connectivity.
// @Tags Monitoring
// @Produce json
// @Success 200 {object} response.Message "Service healthy"
// @Failure 503 {object} response.Message "Service unhealthy"
// @Router /v1/health [get]
func (handler *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Health")
	defer scope.End()

	if err := handler.db.Read.PingContext(ctx); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("postgres read connection unhealthy")

		response.WithUnhealthy(w)

		return
	}

	if err := handler.redis.Ping(ctx).Err(); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("redis connection unhealthy")

		response.WithUnhealthy(w)

		return
	}

	response.WithMessage(w, http.StatusOK, "OK")
}
