package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"openrun/config"
	"openrun/infras/otel"
	"openrun/internal/domains/account/model"
	"openrun/internal/domains/account/model/dto"
	"openrun/internal/domains/account/repository"
	siteModel "openrun/internal/domains/site/model"
	siteRepo "openrun/internal/domains/site/repository"
	"openrun/shared"
	"openrun/shared/cache"
	"openrun/shared/constant"
	gDto "openrun/shared/dto"
	"openrun/shared/failure"
)

const (
	cacheGetAccount    = "account:get"
	cacheGetAllAccount = "account:gets"
	cacheCountAccount  = "account:count"
)

type Account interface {
	Create(ctx context.Context, req dto.CreateAccountRequest) error
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetAccountsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.AccountResponse, error)
	Update(ctx context.Context, req dto.UpdateAccountRequest, id string) error
	Toggle(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo     repository.Account
	siteRepo siteRepo.Site
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Account, siteRepo siteRepo.Site, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Account {
	return &serviceImpl{
		repo:     repo,
		siteRepo: siteRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateAccountRequest) (err error) {
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
				Field:    model.FieldUsername,
				Value:    req.Username,
				Operator: gDto.FilterOperatorEq,
				Table:    model.TableName,
			},
		},
		Operator: gDto.FilterGroupOperatorAnd,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to check for duplicate account")

		return fmt.Errorf("failed to check for duplicate account: %w", err)
	}

	if duplicate {
		return failure.Conflict("username already registered for this camping site") // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, req.ToModel(user)); err != nil {
		log.Error().Err(err).Msg("failed to create account")

		return fmt.Errorf("failed to create account: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllAccount)
		shared.InvalidateCaches(c, s.cache, cacheCountAccount)
	}()

	return nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetAccountsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllAccount, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for accounts")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count accounts")

		return res, fmt.Errorf("failed to count accounts: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get accounts")

		return res, fmt.Errorf("failed to get accounts: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save accounts to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountAccount, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for account count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count accounts")

		return res, fmt.Errorf("failed to count accounts: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save account count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.AccountResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetAccount, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for account")

		return res, nil
	}

	account, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get account")

		return res, fmt.Errorf("failed to get account: %w", err)
	}

	if account.ID == constant.Empty {
		return res, failure.NotFound("account") // nolint:wrapcheck
	}

	res.FromModel(account)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save account to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateAccountRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateAccountRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if account exists")

		return fmt.Errorf("failed to check if account exists: %w", err)
	}

	if !exist {
		log.Error().Msg("account not found")

		return failure.NotFound("account") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user)
	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update account")

		return fmt.Errorf("failed to update account: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetAccount, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete account from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllAccount)
		shared.InvalidateCaches(c, s.cache, cacheCountAccount)
	}()

	return nil
}

// Toggle flips is_active and returns the new state.
func (s *serviceImpl) Toggle(ctx context.Context, id string) (active bool, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Toggle")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	account, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get account")

		return false, fmt.Errorf("failed to get account: %w", err)
	}

	if account.ID == constant.Empty {
		return false, failure.NotFound("account") // nolint:wrapcheck
	}

	active = !account.IsActive

	updatedFields := map[string]any{
		model.FieldIsActive:      active,
		constant.FieldModifiedBy: user,
	}

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to toggle account")

		return false, fmt.Errorf("failed to toggle account: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetAccount, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete account from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllAccount)
	}()

	return active, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if account exists")

		return fmt.Errorf("failed to check if account exists: %w", err)
	}

	if !exist {
		log.Error().Msg("account not found")

		return failure.NotFound("account") // nolint:wrapcheck
	}

	if err := s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete account")

		return fmt.Errorf("failed to delete account: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetAccount, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete account from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllAccount)
		shared.InvalidateCaches(c, s.cache, cacheCountAccount)
	}()

	return nil
}
