package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"

	"openrun/infras/otel"
	"openrun/infras/postgres"
	"openrun/internal/domains/auth/model"
	gDto "openrun/shared/dto"
	gRepo "openrun/shared/repository"
)

type Operator interface {
	Insert(ctx context.Context, model model.Operator) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Operator, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Operator]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Operator {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Operator](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
