package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"openrun/config"
	"openrun/infras/jwt"
	"openrun/infras/otel"
	"openrun/internal/domains/auth/model"
	"openrun/internal/domains/auth/model/dto"
	"openrun/internal/domains/auth/repository"
	"openrun/shared"
	"openrun/shared/constant"
	gDto "openrun/shared/dto"
	"openrun/shared/failure"
	"openrun/shared/password"
	"openrun/shared/timezone"
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, operatorID string) error
}

type serviceImpl struct {
	repo       repository.Operator
	cfg        *config.Config
	otel       otel.Otel
	jwtService jwt.JWT
}

func New(repo repository.Operator, cfg *config.Config, otel otel.Otel, jwt jwt.JWT) Auth {
	return &serviceImpl{
		repo:       repo,
		cfg:        cfg,
		otel:       otel,
		jwtService: jwt,
	}
}

func usernameFilter(username string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    model.FieldUsername,
				Operator: gDto.FilterOperatorEq,
				Value:    username,
				Table:    model.TableName,
			},
		},
	}
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer scope.TraceIfError(err)

	creator, _ := ctx.Value(constant.ContextKeyUsername).(string)

	exists, err := s.repo.Exist(ctx, usernameFilter(req.Username))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if operator exists")

		return fmt.Errorf("failed to check if operator exists: %w", err)
	}

	if exists {
		return failure.BadRequestFromString("username already registered") // nolint:wrapcheck
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err = s.repo.Insert(ctx, req.ToOperatorModel(creator, hashedPassword)); err != nil {
		log.Error().Err(err).Msg("failed to create operator")

		return fmt.Errorf("failed to create operator: %w", err)
	}

	return nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := usernameFilter(req.Username)

	operator, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Warn().Str("username", req.Username).Msg("login attempt with non-existent username")

		return res, failure.BadRequestFromString("invalid username or password") // nolint:wrapcheck
	}

	if err := password.Verify(req.Password, operator.Password); err != nil {
		log.Warn().Str("username", req.Username).Msg("login attempt with wrong password")

		return res, failure.BadRequestFromString("invalid username or password") // nolint:wrapcheck
	}

	if !operator.Active {
		return res, failure.BadRequestFromString("operator account is deactivated") // nolint:wrapcheck
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, operator.ID, operator.Username, operator.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	lastLogin := dto.UpdateLastLoginRequest{LastLogin: timezone.Now()}
	updatedFields := shared.TransformFields(lastLogin, operator.ID)

	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Warn().Err(err).Str("operator_id", operator.ID).Msg("failed to update last login")

		return res, fmt.Errorf("failed to update last login: %w", err)
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(err)

	tokenPair, err := s.jwtService.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token") // nolint:wrapcheck
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, operatorID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangePassword")
	defer scope.End()
	defer scope.TraceIfError(err)

	username, _ := ctx.Value(constant.ContextKeyUsername).(string)
	filter := shared.FilterByID(operatorID, model.FieldID, model.TableName)

	operator, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get operator")

		return fmt.Errorf("failed to get operator: %w", err)
	}

	if operator.ID == constant.Empty {
		return failure.NotFound("operator") // nolint:wrapcheck
	}

	if err := password.Verify(req.CurrentPassword, operator.Password); err != nil {
		return failure.BadRequestFromString("current password is incorrect") // nolint:wrapcheck
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")

		return fmt.Errorf("failed to hash new password: %w", err)
	}

	updatePassword := dto.UpdatePasswordRequest{Password: hashedPassword}
	updatedFields := shared.TransformFields(updatePassword, username)

	if err = s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
