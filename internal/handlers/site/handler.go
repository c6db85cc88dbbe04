package site

import (
	"net/http"
	"openrun/infras/otel"
	"openrun/internal/domains/site/model"
	"openrun/internal/domains/site/model/dto"
	"openrun/internal/domains/site/service"
	"openrun/shared/constant"
	gDto "openrun/shared/dto"
	"openrun/shared/validator"
	"openrun/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Site
	otel    otel.Otel
}

func New(service service.Site, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/sites", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSite)
		routerGroup.Get("/", handler.GetSites)
		routerGroup.Get("/{id}", handler.GetSiteByID)
		routerGroup.Patch("/{id}", handler.UpdateSite)
		routerGroup.Delete("/{id}", handler.DeleteSite)
	})
}

// CreateSite handles the registration of a new camping site.
// @Summary Register a camping site
// @Description Register a camping site with its remote reservation system configuration.
// @Tags Site
// @Accept json
// @Produce json
// @Param request body dto.CreateSiteRequest true "Create Site Request"
// @Success 201 {object} response.Message "Site created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/sites [post]
// @Security BearerAuth
func (handler *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSite")
	defer scope.End()

	req := dto.CreateSiteRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create site")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Site created successfully by operator " + operator)

	response.WithMessage(w, http.StatusCreated, "Site created successfully")
}

// GetSites retrieves all camping sites based on query parameters.
// @Summary Get all camping sites
// @Description Retrieve all camping sites with optional filtering and pagination.
// @Tags Site
// @Accept json
// @Produce json
// @Param name query string false "Filter by name"
// @Param site_type query string false "Filter by site type"
// @Success 200 {object} dto.GetSitesResponse "List of camping sites"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/sites [get]
// @Security BearerAuth
func (handler *Handler) GetSites(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSites")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldName,
				Operator: gDto.FilterOperatorLike,
				Value:    r.URL.Query().Get(model.FieldName),
				Table:    model.TableName,
			},
		},
	}

	if siteType := r.URL.Query().Get(model.FieldSiteType); siteType != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldSiteType,
			Operator: gDto.FilterOperatorEq,
			Value:    siteType,
			Table:    model.TableName,
		})
	}

	sites, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get sites")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Sites retrieved successfully")

	response.WithJSON(w, http.StatusOK, sites)
}

// GetSiteByID retrieves a camping site by its ID.
// @Summary Get a camping site by ID
// @Description Retrieve a camping site by its unique identifier.
// @Tags Site
// @Accept json
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} dto.SiteResponse "Camping site details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/sites/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetSiteByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSiteByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	site, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get site by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Site retrieved successfully")

	response.WithJSON(w, http.StatusOK, site)
}

// UpdateSite updates an existing camping site by its ID.
// @Summary Update a camping site by ID
// @Description Update the details of an existing camping site.
// @Tags Site
// @Accept json
// @Produce json
// @Param id path string true "Site ID"
// @Param request body dto.UpdateSiteRequest true "Update Site Request"
// @Success 200 {object} response.Message "Site updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/sites/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSite")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateSiteRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update site")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Site updated successfully by operator " + operator)

	response.WithMessage(w, http.StatusOK, "Site updated successfully")
}

// DeleteSite deletes a camping site by its ID.
// @Summary Delete a camping site by ID
// @Description Delete a camping site using its unique identifier.
// @Tags Site
// @Accept json
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} response.Message "Site deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/sites/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSite")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete site")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Site deleted successfully by operator " + operator)

	response.WithMessage(w, http.StatusOK, "Site deleted successfully")
}
