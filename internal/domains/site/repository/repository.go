package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"openrun/infras/otel"
	"openrun/infras/postgres"
	"openrun/internal/domains/site/model"
	gDto "openrun/shared/dto"
	gRepo "openrun/shared/repository"
)

type Site interface {
	Insert(ctx context.Context, model model.CampingSite) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.CampingSite, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.CampingSite, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.CampingSite]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Site {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.CampingSite](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
