package account

import (
	"net/http"
	"openrun/infras/otel"
	"openrun/internal/domains/account/model"
	"openrun/internal/domains/account/model/dto"
	"openrun/internal/domains/account/service"
	"openrun/shared"
	"openrun/shared/constant"
	gDto "openrun/shared/dto"
	"openrun/shared/validator"
	"openrun/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Account
	otel    otel.Otel
}

func New(service service.Account, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/accounts", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateAccount)
		routerGroup.Get("/", handler.GetAccounts)
		routerGroup.Get("/{id}", handler.GetAccountByID)
		routerGroup.Patch("/{id}", handler.UpdateAccount)
		routerGroup.Patch("/{id}/toggle", handler.ToggleAccount)
		routerGroup.Delete("/{id}", handler.DeleteAccount)
	})
}

// CreateAccount handles the registration of a new reservation account.
// @Summary Register a reservation account
// @Description Register remote-site credentials and booker details for a camping site.
// @Tags Account
// @Accept json
// @Produce json
// @Param request body dto.CreateAccountRequest true "Create Account Request"
// @Success 201 {object} response.Message "Account created successfully"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/accounts [post]
// @Security BearerAuth
func (handler *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAccount")
	defer scope.End()

	req := dto.CreateAccountRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Create(ctx, req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create account")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Account created successfully by operator " + operator)

	response.WithMessage(w, http.StatusCreated, "Account created successfully")
}

// GetAccounts retrieves all reservation accounts based on query parameters.
// @Summary Get all reservation accounts
// @Description Retrieve all reservation accounts with optional filtering and pagination.
// @Tags Account
// @Accept json
// @Produce json
// @Param camping_site_id query string false "Filter by camping site"
// @Param nickname query string false "Filter by nickname"
// @Param is_active query boolean false "Filter by active flag"
// @Success 200 {object} dto.GetAccountsResponse "List of reservation accounts"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/accounts [get]
// @Security BearerAuth
func (handler *Handler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAccounts")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldNickname,
				Operator: gDto.FilterOperatorLike,
				Value:    r.URL.Query().Get(model.FieldNickname),
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

	if active := shared.ConvertStringToBool(r.URL.Query().Get(model.FieldIsActive)); active != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldIsActive,
			Operator: gDto.FilterOperatorEq,
			Value:    *active,
			Table:    model.TableName,
		})
	}

	accounts, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get accounts")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Accounts retrieved successfully")

	response.WithJSON(w, http.StatusOK, accounts)
}

// GetAccountByID retrieves a reservation account by its ID.
// @Summary Get a reservation account by ID
// @Description Retrieve a reservation account by its unique identifier.
// @Tags Account
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse "Reservation account details"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/accounts/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetAccountByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAccountByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	account, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get account by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Account retrieved successfully")

	response.WithJSON(w, http.StatusOK, account)
}

// UpdateAccount updates an existing reservation account by its ID.
// @Summary Update a reservation account by ID
// @Description Update the details of an existing reservation account.
// @Tags Account
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param request body dto.UpdateAccountRequest true "Update Account Request"
// @Success 200 {object} response.Message "Account updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/accounts/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateAccount")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateAccountRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update account")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Account updated successfully by operator " + operator)

	response.WithMessage(w, http.StatusOK, "Account updated successfully")
}

// ToggleAccount flips the active flag of a reservation account.
// @Summary Toggle a reservation account
// @Description Activate or deactivate a reservation account. Inactive accounts never join a wave.
// @Tags Account
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} response.Message "Account toggled"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/accounts/{id}/toggle [patch]
// @Security BearerAuth
func (handler *Handler) ToggleAccount(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ToggleAccount")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	active, err := handler.service.Toggle(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to toggle account")

		response.WithError(w, err)

		return
	}

	message := "Account deactivated"
	if active {
		message = "Account activated"
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent(message + " by operator " + operator)

	response.WithMessage(w, http.StatusOK, message)
}

// DeleteAccount deletes a reservation account by its ID.
// @Summary Delete a reservation account by ID
// @Description Delete a reservation account using its unique identifier.
// @Tags Account
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} response.Message "Account deleted successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/accounts/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteAccount")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete account")

		response.WithError(w, err)

		return
	}

	operator, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Account deleted successfully by operator " + operator)

	response.WithMessage(w, http.StatusOK, "Account deleted successfully")
}
