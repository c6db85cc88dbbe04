// Package archive writes the full attempt log of a finished schedule to
// object storage so the audit trail survives database retention.
package archive

//go:generate go run go.uber.org/mock/mockgen -source=./archive.go -destination=./mocks/archive_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"openrun/config"
	"openrun/infras/otel"
	"openrun/infras/s3"
	scheduleModel "openrun/internal/domains/schedule/model"
	"openrun/shared/constant"
)

type Archiver interface {
	// ArchiveSchedule uploads the terminal snapshot. Returns the object key,
	// or an empty key when archiving is disabled.
	ArchiveSchedule(ctx context.Context, schedule *scheduleModel.ReservationSchedule, summary *scheduleModel.ResultSummary, attempts []scheduleModel.AttemptResult) (string, error)
}

// snapshot is the JSON document uploaded per schedule.
type snapshot struct {
	Schedule   *scheduleModel.ReservationSchedule `json:"schedule"`
	Summary    *scheduleModel.ResultSummary       `json:"summary"`
	Attempts   []scheduleModel.AttemptResult      `json:"attempts"`
	ArchivedAt time.Time                          `json:"archived_at"`
}

type archiver struct {
	config *config.Config
	s3     s3.S3
	otel   otel.Otel
}

func (a *archiver) ArchiveSchedule(ctx context.Context, schedule *scheduleModel.ReservationSchedule, summary *scheduleModel.ResultSummary, attempts []scheduleModel.AttemptResult) (key string, err error) {
	ctx, scope := a.otel.NewScope(ctx, constant.OtelEngineScopeName, constant.OtelEngineScopeName+".ArchiveSchedule")
	defer scope.End()
	defer scope.TraceIfError(err)

	if !a.config.External.S3.Enable {
		return constant.Empty, nil
	}

	payload, err := json.Marshal(snapshot{
		Schedule:   schedule,
		Summary:    summary,
		Attempts:   attempts,
		ArchivedAt: time.Now(),
	})
	if err != nil {
		return constant.Empty, errors.Wrap(err, "marshalling schedule snapshot")
	}

	objectName := fmt.Sprintf("%s.json", schedule.ID)

	key, err = a.s3.UploadBytes(
		ctx,
		a.config.External.S3.BucketName,
		a.config.External.S3.ArchivePrefix,
		objectName,
		constant.ContentTypeJSON,
		payload,
	)
	if err != nil {
		return constant.Empty, errors.Wrapf(err, "archiving schedule %s", schedule.ID)
	}

	return key, nil
}

func New(conf *config.Config, s3Client s3.S3, o otel.Otel) Archiver {
	return &archiver{
		config: conf,
		s3:     s3Client,
		otel:   o,
	}
}
