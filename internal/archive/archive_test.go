package archive_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"openrun/config"
	otelMocks "openrun/infras/otel/mocks"
	s3Mocks "openrun/infras/s3/mocks"
	"openrun/internal/archive"
	scheduleModel "openrun/internal/domains/schedule/model"
)

func testConfig(enabled bool) *config.Config {
	cfg := &config.Config{}
	cfg.External.S3.Enable = enabled
	cfg.External.S3.BucketName = "openrun-audit"
	cfg.External.S3.ArchivePrefix = "schedules"

	return cfg
}

func TestArchiveSchedule(t *testing.T) {
	schedule := &scheduleModel.ReservationSchedule{ID: "sch-1", TargetDate: "2026-03-15"}
	summary := &scheduleModel.ResultSummary{Outcome: scheduleModel.OutcomeSuccess, TotalAttempts: 4}
	attempts := []scheduleModel.AttemptResult{
		{ScheduleID: "sch-1", AccountID: "acc-1", Outcome: scheduleModel.OutcomeSoldOut},
		{ScheduleID: "sch-1", AccountID: "acc-1", Outcome: scheduleModel.OutcomeSuccess},
	}

	t.Run("UploadsSnapshot", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockS3 := s3Mocks.NewMockS3(ctrl)

		mockS3.EXPECT().
			UploadBytes(gomock.Any(), "openrun-audit", "schedules", "sch-1.json", "application/json", gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _, _, _ string, data []byte) (string, error) {
				var decoded map[string]json.RawMessage
				require.NoError(t, json.Unmarshal(data, &decoded))
				assert.Contains(t, decoded, "schedule")
				assert.Contains(t, decoded, "attempts")

				return "schedules/sch-1.json", nil
			})

		archiver := archive.New(testConfig(true), mockS3, otelMocks.NewOtel())

		key, err := archiver.ArchiveSchedule(context.Background(), schedule, summary, attempts)

		require.NoError(t, err)
		assert.Equal(t, "schedules/sch-1.json", key)
	})

	t.Run("DisabledSkipsUpload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockS3 := s3Mocks.NewMockS3(ctrl)

		archiver := archive.New(testConfig(false), mockS3, otelMocks.NewOtel())

		key, err := archiver.ArchiveSchedule(context.Background(), schedule, summary, attempts)

		require.NoError(t, err)
		assert.Empty(t, key)
	})

	t.Run("UploadFailure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockS3 := s3Mocks.NewMockS3(ctrl)

		mockS3.EXPECT().
			UploadBytes(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errors.New("bucket unreachable"))

		archiver := archive.New(testConfig(true), mockS3, otelMocks.NewOtel())

		_, err := archiver.ArchiveSchedule(context.Background(), schedule, summary, attempts)

		assert.Error(t, err)
	})
}
