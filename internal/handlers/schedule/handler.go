package schedule

import (
	"net/http"
	"openrun/infras/otel"
	"openrun/internal/domains/schedule/model"
	"openrun/internal/domains/schedule/model/dto"
	"openrun/internal/domains/schedule/service"
	"openrun/shared/constant"
	gDto "openrun/shared/dto"
	"openrun/shared/validator"
	"openrun/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Schedule
	otel    otel.Otel
}

func New(service service.Schedule, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/schedules", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateSchedule)
		routerGroup.Get("/", handler.GetSchedules)
		routerGroup.Get("/{id}", handler.GetScheduleByID)
		routerGroup.Get("/{id}/attempts", handler.GetScheduleAttempts)
		routerGroup.Post("/{id}/cancel", handler.CancelSchedule)
		routerGroup.Delete("/{id}", handler.DeleteSchedule)
	})
}

// CreateSchedule handles the creation of a new reservation schedule.
// @Summary Create a reservation schedule
// @Description Schedule an open-run reservation attempt for a camping site at a fixed instant.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param request body dto.CreateScheduleRequest true "Create Schedule Request"
// @Success 201 {object} dto.ScheduleResponse "Schedule created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules [post]
// @Security BearerAuth
func (handler *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateSchedule")
	defer scope.End()

	req := dto.CreateScheduleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create schedule")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Schedule created successfully by operator " + operator)

	response.WithJSON(w, http.StatusCreated, res)
}

// GetSchedules retrieves all reservation schedules based on query parameters.
// @Summary Get all reservation schedules
// @Description Retrieve all reservation schedules with optional filtering and pagination.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param camping_site_id query string false "Filter by camping site"
// @Param status query string false "Filter by lifecycle status"
// @Param target_date query string false "Filter by target date"
// @Success 200 {object} dto.GetSchedulesResponse "List of reservation schedules"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules [get]
// @Security BearerAuth
func (handler *Handler) GetSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetSchedules")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	if siteID := r.URL.Query().Get(model.FieldCampingSiteID); siteID != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldCampingSiteID,
			Operator: gDto.FilterOperatorEq,
			Value:    siteID,
			Table:    model.TableName,
		})
	}

	if status := r.URL.Query().Get(model.FieldStatus); status != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldStatus,
			Operator: gDto.FilterOperatorEq,
			Value:    status,
			Table:    model.TableName,
		})
	}

	if targetDate := r.URL.Query().Get(model.FieldTargetDate); targetDate != "" {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldTargetDate,
			Operator: gDto.FilterOperatorEq,
			Value:    targetDate,
			Table:    model.TableName,
		})
	}

	schedules, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get schedules")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Schedules retrieved successfully")

	response.WithJSON(w, http.StatusOK, schedules)
}

// GetScheduleByID retrieves a reservation schedule by its ID.
// @Summary Get a reservation schedule by ID
// @Description Retrieve a reservation schedule by its unique identifier, including its terminal result when present.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} dto.ScheduleResponse "Reservation schedule details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetScheduleByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetScheduleByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	schedule, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get schedule by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Schedule retrieved successfully")

	response.WithJSON(w, http.StatusOK, schedule)
}

// GetScheduleAttempts retrieves the attempt log of a reservation schedule.
// @Summary Get the attempt log of a schedule
// @Description Retrieve every recorded attempt of a reservation schedule in wave order.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} dto.GetAttemptsResponse "Attempt log"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules/{id}/attempts [get]
// @Security BearerAuth
func (handler *Handler) GetScheduleAttempts(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetScheduleAttempts")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	attempts, err := handler.service.Attempts(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get schedule attempts")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Schedule attempts retrieved successfully")

	response.WithJSON(w, http.StatusOK, attempts)
}

// CancelSchedule cancels a pending or in-flight reservation schedule.
// @Summary Cancel a reservation schedule
// @Description Cancel a reservation schedule. A running schedule stops issuing new attempts; a completed reservation is never undone.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Message "Schedule cancelled"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules/{id}/cancel [post]
// @Security BearerAuth
func (handler *Handler) CancelSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CancelSchedule")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Cancel(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to cancel schedule")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Schedule cancelled by operator " + operator)

	response.WithMessage(w, http.StatusOK, "Schedule cancelled")
}

// DeleteSchedule deletes a reservation schedule by its ID.
// @Summary Delete a reservation schedule by ID
// @Description Delete a reservation schedule. Schedules in the warming or running state must be cancelled first.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Message "Schedule deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/schedules/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteSchedule")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete schedule")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Schedule deleted successfully by operator " + operator)

	response.WithMessage(w, http.StatusOK, "Schedule deleted successfully")
}
