package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"openrun/config"
	"openrun/infras/otel"
	"openrun/internal/domains/seat/model"
	"openrun/internal/domains/seat/model/dto"
	"openrun/internal/domains/seat/repository"
	siteModel "openrun/internal/domains/site/model"
	siteRepo "openrun/internal/domains/site/repository"
	"openrun/shared"
	"openrun/shared/cache"
	"openrun/shared/constant"
	gDto "openrun/shared/dto"
	"openrun/shared/failure"
)

const (
	cacheGetSeat    = "seat:get"
	cacheGetAllSeat = "seat:gets"
	cacheCountSeat  = "seat:count"
)

type Seat interface {
	Create(ctx context.Context, req dto.CreateSeatRequest) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetSeatsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.SeatResponse, error)
	Update(ctx context.Context, req dto.UpdateSeatRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo     repository.Seat
	siteRepo siteRepo.Site
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Seat, siteRepo siteRepo.Site, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Seat {
	return &serviceImpl{
		repo:     repo,
		siteRepo: siteRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateSeatRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	siteExists, err := s.siteRepo.Exist(ctx, shared.FilterByID(req.CampingSiteID, siteModel.FieldID, siteModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if camping site exists")

		return fmt.Errorf("failed to check if camping site exists: %w", err)
	}

	if !siteExists {
		return failure.BadRequestFromString("camping site does not exist") // nolint:wrapcheck
	}

	duplicate, err := s.repo.Exist(ctx, gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldCampingSiteID,
				Value:    req.CampingSiteID,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
			gDto.Filter{
				Field:    model.FieldProductCode,
				Value:    req.ProductCode,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to check for duplicate product code")

		return fmt.Errorf("failed to check for duplicate product code: %w", err)
	}

	if duplicate {
		return failure.Conflict("product code already registered for this camping site") // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, req.ToModel(user)); err != nil {
		log.Error().Err(err).Msg("failed to create seat")

		return fmt.Errorf("failed to create seat: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllSeat)
		shared.InvalidateCaches(c, s.cache, cacheCountSeat)
	}()

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetSeatsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllSeat, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for seats")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count seats")

		return res, fmt.Errorf("failed to count seats: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get seats")

		return res, fmt.Errorf("failed to get seats: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save seats to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountSeat, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for seat count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count seats")

		return res, fmt.Errorf("failed to count seats: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save seat count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SeatResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetSeat, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for seat")

		return res, nil
	}

	seat, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get seat")

		return res, fmt.Errorf("failed to get seat: %w", err)
	}

	if seat.ID == constant.Empty {
		return res, failure.NotFound("seat") // nolint:wrapcheck
	}

	res.FromModel(seat)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save seat to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateSeatRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateSeatRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if seat exists")

		return fmt.Errorf("failed to check if seat exists: %w", err)
	}

	if !exist {
		log.Error().Msg("seat not found")

		return failure.NotFound("seat") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user)
	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update seat")

		return fmt.Errorf("failed to update seat: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetSeat, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete seat from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllSeat)
		shared.InvalidateCaches(c, s.cache, cacheCountSeat)
	}()

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if seat exists")

		return fmt.Errorf("failed to check if seat exists: %w", err)
	}

	if !exist {
		log.Error().Msg("seat not found")

		return failure.NotFound("seat") // nolint:wrapcheck
	}

	if err := s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete seat")

		return fmt.Errorf("failed to delete seat: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetSeat, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete seat from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllSeat)
		shared.InvalidateCaches(c, s.cache, cacheCountSeat)
	}()

	return nil
}
