package seat

import (
	"net/http"
	"openrun/infras/otel"
	"openrun/internal/domains/seat/model"
	"openrun/internal/domains/seat/model/dto"
	"openrun/internal/domains/seat/service"
	"openrun/shared/constant"
	gDto "openrun/shared/dto"
	"openrun/shared/validator"
	"openrun/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Seat
	otel    otel.Otel
}

func New(service service.Seat, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/seats", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSeat)
		routerGroup.Get("/", handler.GetSeats)
		routerGroup.Get("/{id}", handler.GetSeatByID)
		routerGroup.Patch("/{id}", handler.UpdateSeat)
		routerGroup.Delete("/{id}", handler.DeleteSeat)
	})
}

// CreateSeat handles the registration of a new bookable seat.
// @Summary Register a seat
// @Description Register a bookable unit of a camping site with its remote product code.
// @Tags Seat
// @Accept json
// @Produce json
// @Param request body dto.CreateSeatRequest true "Create Seat Request"
// @Success 201 {object} response.Message "Seat created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/seats [post]
// @Security BearerAuth
func (handler *Handler) CreateSeat(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSeat")
	defer scope.End()

	req := dto.CreateSeatRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create seat")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Seat created successfully by operator " + operator)

	response.WithMessage(w, http.StatusCreated, "Seat created successfully")
}

// GetSeats retrieves all seats based on query parameters.
// @Summary Get all seats
// @Description Retrieve all seats with optional filtering and pagination.
// @Tags Seat
// @Accept json
// @Produce json
// @Param camping_site_id query string false "Filter by camping site"
// @Param category query string false "Filter by category"
// @Param name query string false "Filter by name"
// @Success 200 {object} dto.GetSeatsResponse "List of seats"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/seats [get]
// @Security BearerAuth
func (handler *Handler) GetSeats(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSeats")
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

	if siteID := r.URL.Query().Get(model.FieldCampingSiteID); siteID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCampingSiteID,
			Operator: gDto.FilterOperatorEq,
			Value:    siteID,
			Table:    model.TableName,
		})
	}

	if category := r.URL.Query().Get(model.FieldCategory); category != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCategory,
			Operator: gDto.FilterOperatorEq,
			Value:    category,
			Table:    model.TableName,
		})
	}

	seats, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get seats")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Seats retrieved successfully")

	response.WithJSON(w, http.StatusOK, seats)
}

// GetSeatByID retrieves a seat by its ID.
// @Summary Get a seat by ID
// @Description Retrieve a seat by its unique identifier.
// @Tags Seat
// @Accept json
// @Produce json
// @Param id path string true "Seat ID"
// @Success 200 {object} dto.SeatResponse "Seat details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/seats/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetSeatByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSeatByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	seat, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get seat by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Seat retrieved successfully")

	response.WithJSON(w, http.StatusOK, seat)
}

// UpdateSeat updates an existing seat by its ID.
// @Summary Update a seat by ID
// @Description Update the details of an existing seat.
// @Tags Seat
// @Accept json
// @Produce json
// @Param id path string true "Seat ID"
// @Param request body dto.UpdateSeatRequest true "Update Seat Request"
// @Success 200 {object} response.Message "Seat updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/seats/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateSeat(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateSeat")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateSeatRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update seat")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Seat updated successfully by operator " + operator)

	response.WithMessage(w, http.StatusOK, "Seat updated successfully")
}

// DeleteSeat deletes a seat by its ID.
// @Summary Delete a seat by ID
// @Description Delete a seat using its unique identifier.
// @Tags Seat
// @Accept json
// @Produce json
// @Param id path string true "Seat ID"
// @Success 200 {object} response.Message "Seat deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/seats/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteSeat(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSeat")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete seat")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Seat deleted successfully by operator " + operator)

	response.WithMessage(w, http.StatusOK, "Seat deleted successfully")
}
