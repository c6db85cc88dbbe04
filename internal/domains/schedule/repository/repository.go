package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"openrun/infras/otel"
	"openrun/infras/postgres"
	"openrun/internal/domains/schedule/model"
	"openrun/shared/constant"
	gDto "openrun/shared/dto"
	gRepo "openrun/shared/repository"
	"openrun/shared/timezone"
)

// ErrDuplicateSuccess is returned when a second success row for the same
// schedule hits the partial unique index.
var ErrDuplicateSuccess = errors.New("success already recorded for schedule")

type Schedule interface {
	Insert(ctx context.Context, model model.ReservationSchedule) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.ReservationSchedule, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.ReservationSchedule, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error

	DueSchedules(ctx context.Context) ([]model.ReservationSchedule, error)
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
	SetResult(ctx context.Context, id, status string, result types.JSONText) error
	AppendAttempt(ctx context.Context, attempt model.AttemptResult) error
	AttemptsBySchedule(ctx context.Context, scheduleID string) ([]model.AttemptResult, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.ReservationSchedule]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Schedule {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.ReservationSchedule](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// DueSchedules returns every schedule that is not yet terminal, oldest
// execute_at first, so the engine loop can evaluate due transitions.
func (repo *repositoryImpl) DueSchedules(ctx context.Context) (res []model.ReservationSchedule, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".DueSchedules")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(
		"SELECT * FROM %s WHERE %s IN ($1, $2, $3) ORDER BY %s ASC",
		model.TableName, model.FieldStatus, model.FieldExecuteAt,
	)

	err = repo.db.Read.SelectContext(ctx, &res, query, model.StatusPending, model.StatusWarming, model.StatusRunning)
	if err != nil {
		log.Error().Err(err).Msg("failed to select due schedules")

		return nil, fmt.Errorf("failed to select due schedules: %w", err)
	}

	return res, nil
}

// TransitionStatus performs a compare-and-swap on the schedule status. It
// returns false when the schedule was not in the expected state, which makes
// concurrent transitions race-safe without row locks.
func (repo *repositoryImpl) TransitionStatus(ctx context.Context, id, from, to string) (ok bool, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".TransitionStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !model.CanTransition(from, to) {
		return false, fmt.Errorf("illegal schedule transition %s -> %s", from, to)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s = $1, %s = $2 WHERE %s = $3 AND %s = $4",
		model.TableName, model.FieldStatus, constant.FieldModifiedAt, model.FieldID, model.FieldStatus,
	)

	result, err := repo.db.Write.ExecContext(ctx, query, to, timezone.Now(), id, from)
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to transition schedule status")

		return false, fmt.Errorf("failed to transition schedule status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 1, nil
}

// SetResult stores the terminal result summary together with the final status.
func (repo *repositoryImpl) SetResult(ctx context.Context, id, status string, result types.JSONText) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".SetResult")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(
		"UPDATE %s SET %s = $1, %s = $2, %s = $3 WHERE %s = $4",
		model.TableName, model.FieldStatus, model.FieldResult, constant.FieldModifiedAt, model.FieldID,
	)

	if _, err = repo.db.Write.ExecContext(ctx, query, status, result, timezone.Now(), id); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to set schedule result")

		return fmt.Errorf("failed to set schedule result: %w", err)
	}

	return nil
}

// AppendAttempt inserts one attempt log row. The partial unique index on
// (schedule_id) WHERE outcome = 'success' rejects a second success.
func (repo *repositoryImpl) AppendAttempt(ctx context.Context, attempt model.AttemptResult) (err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".AppendAttempt")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(`INSERT INTO %s (
		%s, %s, %s, %s, %s, %s, %s, %s, %s, %s
	) VALUES (
		:id, :schedule_id, :account_id, :seat_product_code, :outcome,
		:attempt_ordinal, :reservation_number, :error_text, :duration_ms, :attempted_at
	)`,
		model.AttemptTableName,
		model.AttemptFieldID, model.AttemptFieldScheduleID, model.AttemptFieldAccountID,
		model.AttemptFieldSeatProductCode, model.AttemptFieldOutcome, model.AttemptFieldOrdinal,
		model.AttemptFieldReservationNumber, model.AttemptFieldErrorText,
		model.AttemptFieldDurationMS, model.AttemptFieldAttemptedAt,
	)

	if _, err = repo.db.Write.NamedExecContext(ctx, query, attempt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation {
			return ErrDuplicateSuccess
		}

		log.Error().Err(err).Str("scheduleID", attempt.ScheduleID).Msg("failed to append attempt")

		return fmt.Errorf("failed to append attempt: %w", err)
	}

	return nil
}

func (repo *repositoryImpl) AttemptsBySchedule(ctx context.Context, scheduleID string) (res []model.AttemptResult, err error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".AttemptsBySchedule")
	defer scope.End()
	defer scope.TraceIfError(err)

	query := fmt.Sprintf(
		"SELECT * FROM %s WHERE %s = $1 ORDER BY %s ASC",
		model.AttemptTableName, model.AttemptFieldScheduleID, model.AttemptFieldAttemptedAt,
	)

	err = repo.db.Read.SelectContext(ctx, &res, query, scheduleID)
	if err != nil {
		log.Error().Err(err).Str("scheduleID", scheduleID).Msg("failed to select attempts")

		return nil, fmt.Errorf("failed to select attempts: %w", err)
	}

	return res, nil
}
