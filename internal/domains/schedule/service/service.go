package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"openrun/config"
	"openrun/infras/otel"
	accountModel "openrun/internal/domains/account/model"
	accountRepo "openrun/internal/domains/account/repository"
	"openrun/internal/domains/schedule/model"
	"openrun/internal/domains/schedule/model/dto"
	"openrun/internal/domains/schedule/repository"
	seatModel "openrun/internal/domains/seat/model"
	seatRepo "openrun/internal/domains/seat/repository"
	siteModel "openrun/internal/domains/site/model"
	siteRepo "openrun/internal/domains/site/repository"
	"openrun/shared"
	"openrun/shared/cache"
	"openrun/shared/constant"
	gDto "openrun/shared/dto"
	"openrun/shared/failure"
)

const (
	cacheGetSchedule    = "schedule:get"
	cacheGetAllSchedule = "schedule:gets"
	cacheCountSchedule  = "schedule:count"
)

// Canceller lets the service request cooperative cancellation of a run that
// is already in flight. The wave engine implements it.
type Canceller interface {
	Cancel(scheduleID string) bool
}

type Schedule interface {
	Create(ctx context.Context, req dto.CreateScheduleRequest) (dto.ScheduleResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetSchedulesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.ScheduleResponse, error)
	Attempts(ctx context.Context, id string) (dto.GetAttemptsResponse, error)
	Cancel(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo        repository.Schedule
	siteRepo    siteRepo.Site
	accountRepo accountRepo.Account
	seatRepo    seatRepo.Seat
	canceller   Canceller
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(
	repo repository.Schedule,
	siteRepo siteRepo.Site,
	accountRepo accountRepo.Account,
	seatRepo seatRepo.Seat,
	canceller Canceller,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Schedule {
	return &serviceImpl{
		repo:        repo,
		siteRepo:    siteRepo,
		accountRepo: accountRepo,
		seatRepo:    seatRepo,
		canceller:   canceller,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateScheduleRequest) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	siteExists, err := s.siteRepo.Exist(ctx, shared.FilterByID(req.CampingSiteID, siteModel.FieldID, siteModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if camping site exists")

		return res, fmt.Errorf("failed to check if camping site exists: %w", err)
	}

	if !siteExists {
		return res, failure.BadRequestFromString("camping site does not exist") // nolint:wrapcheck
	}

	if err = s.validateAccounts(ctx, req.CampingSiteID, req.AccountIDs); err != nil {
		return res, err
	}

	if err = s.validateSeats(ctx, req.CampingSiteID, req.SeatIDs); err != nil {
		return res, err
	}

	schedule, err := req.ToModel(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse schedule request")

		return res, failure.BadRequestFromString(fmt.Sprintf("invalid execute_at format: %v", err)) // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, schedule); err != nil {
		log.Error().Err(err).Msg("failed to create schedule")

		return res, fmt.Errorf("failed to create schedule: %w", err)
	}

	res.FromModel(schedule)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllSchedule)
		shared.InvalidateCaches(c, s.cache, cacheCountSchedule)
	}()

	return res, nil
}

// validateAccounts requires every referenced account to exist, belong to the
// schedule's camping site, and be active.
func (s *serviceImpl) validateAccounts(ctx context.Context, siteID string, accountIDs []string) error {
	for _, accountID := range accountIDs {
		account, err := s.accountRepo.Get(ctx, shared.FilterByID(accountID, accountModel.FieldID, accountModel.TableName))
		if err != nil {
			log.Error().Err(err).Str("accountID", accountID).Msg("failed to get account")

			return fmt.Errorf("failed to get account: %w", err)
		}

		if account.ID == constant.Empty {
			return failure.BadRequestFromString(fmt.Sprintf("account %s does not exist", accountID)) // nolint:wrapcheck
		}

		if account.CampingSiteID != siteID {
			return failure.BadRequestFromString(fmt.Sprintf("account %s belongs to a different camping site", accountID)) // nolint:wrapcheck
		}

		if !account.IsActive {
			return failure.BadRequestFromString(fmt.Sprintf("account %s is inactive", accountID)) // nolint:wrapcheck
		}
	}

	return nil
}

// validateSeats requires every referenced seat to belong to the schedule's
// camping site. An empty list means "any seat".
func (s *serviceImpl) validateSeats(ctx context.Context, siteID string, seatIDs []string) error {
	for _, seatID := range seatIDs {
		seat, err := s.seatRepo.Get(ctx, shared.FilterByID(seatID, seatModel.FieldID, seatModel.TableName))
		if err != nil {
			log.Error().Err(err).Str("seatID", seatID).Msg("failed to get seat")

			return fmt.Errorf("failed to get seat: %w", err)
		}

		if seat.ID == constant.Empty {
			return failure.BadRequestFromString(fmt.Sprintf("seat %s does not exist", seatID)) // nolint:wrapcheck
		}

		if seat.CampingSiteID != siteID {
			return failure.BadRequestFromString(fmt.Sprintf("seat %s belongs to a different camping site", seatID)) // nolint:wrapcheck
		}
	}

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetSchedulesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllSchedule, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for schedules")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count schedules")

		return res, fmt.Errorf("failed to count schedules: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedules")

		return res, fmt.Errorf("failed to get schedules: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save schedules to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountSchedule, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for schedule count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count schedules")

		return res, fmt.Errorf("failed to count schedules: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save schedule count to cache")
		}
	}()

	return res, nil
}

// Get always reads through to the store: schedule status moves outside the
// request path, so a cached copy would go stale mid-run.
func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	schedule, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedule")

		return res, fmt.Errorf("failed to get schedule: %w", err)
	}

	if schedule.ID == constant.Empty {
		return res, failure.NotFound("schedule") // nolint:wrapcheck
	}

	res.FromModel(schedule)

	return res, nil
}

func (s *serviceImpl) Attempts(ctx context.Context, id string) (res dto.GetAttemptsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Attempts")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if schedule exists")

		return res, fmt.Errorf("failed to check if schedule exists: %w", err)
	}

	if !exist {
		return res, failure.NotFound("schedule") // nolint:wrapcheck
	}

	attempts, err := s.repo.AttemptsBySchedule(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get attempts")

		return res, fmt.Errorf("failed to get attempts: %w", err)
	}

	res.FromModels(attempts)

	return res, nil
}

// Cancel stops a schedule. Pending and warming schedules transition straight
// to cancelled; a running schedule is cancelled cooperatively through the
// engine, which stops new attempts but never undoes a recorded success.
func (s *serviceImpl) Cancel(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer scope.TraceIfError(err)

	schedule, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedule")

		return fmt.Errorf("failed to get schedule: %w", err)
	}

	if schedule.ID == constant.Empty {
		return failure.NotFound("schedule") // nolint:wrapcheck
	}

	switch schedule.Status {
	case model.StatusPending, model.StatusWarming:
		ok, err := s.repo.TransitionStatus(ctx, id, schedule.Status, model.StatusCancelled)
		if err != nil {
			log.Error().Err(err).Msg("failed to cancel schedule")

			return fmt.Errorf("failed to cancel schedule: %w", err)
		}

		if !ok {
			return failure.Conflict("schedule state changed, retry the cancel") // nolint:wrapcheck
		}

		summary, _ := json.Marshal(model.ResultSummary{
			Outcome: model.StatusCancelled,
			Reason:  "cancelled by operator",
		})
		if err := s.repo.SetResult(ctx, id, model.StatusCancelled, summary); err != nil {
			log.Error().Err(err).Msg("failed to persist cancel result")
		}
	case model.StatusRunning:
		if s.canceller == nil || !s.canceller.Cancel(id) {
			return failure.Conflict("schedule is running but not registered with the engine") // nolint:wrapcheck
		}
	default:
		return failure.Conflict(fmt.Sprintf("schedule is already %s", schedule.Status)) // nolint:wrapcheck
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllSchedule)
	}()

	return nil
}

// Delete removes a schedule and is rejected while the engine may touch it.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	schedule, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get schedule")

		return fmt.Errorf("failed to get schedule: %w", err)
	}

	if schedule.ID == constant.Empty {
		return failure.NotFound("schedule") // nolint:wrapcheck
	}

	if schedule.Status == model.StatusWarming || schedule.Status == model.StatusRunning {
		return failure.Conflict(fmt.Sprintf("schedule is %s and cannot be deleted", schedule.Status)) // nolint:wrapcheck
	}

	if err := s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete schedule")

		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllSchedule)
		shared.InvalidateCaches(c, s.cache, cacheCountSchedule)
	}()

	return nil
}
