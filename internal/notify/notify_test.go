package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"openrun/config"
	"openrun/infras/kafka"
	kafkaMocks "openrun/infras/kafka/mocks"
	scheduleModel "openrun/internal/domains/schedule/model"
)

func testSchedule(status string) *scheduleModel.ReservationSchedule {
	return &scheduleModel.ReservationSchedule{
		ID:            "sch-1",
		CampingSiteID: "site-1",
		TargetDate:    "2026-03-15",
		Status:        status,
	}
}

func TestAttemptRecorded(t *testing.T) {
	t.Run("PublishesToAttemptsTopic", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockKafka := kafkaMocks.NewMockClient(ctrl)

		cfg := &config.Config{}
		cfg.Kafka.Enable = true
		cfg.Kafka.Topics.Attempts = "openrun.attempts"

		published := make(chan kafka.Message, 1)
		mockKafka.EXPECT().
			SendMessages(gomock.Any(), "openrun.attempts", gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
				published <- messages[0]
				return nil
			})

		notifier := New(cfg, mockKafka)
		notifier.AttemptRecorded(context.Background(), &scheduleModel.AttemptResult{
			ScheduleID: "sch-1",
			Outcome:    scheduleModel.OutcomeSoldOut,
		})

		select {
		case msg := <-published:
			assert.Equal(t, "sch-1", msg.Key)
		case <-time.After(time.Second):
			t.Fatal("attempt was never published")
		}
	})

	t.Run("DisabledKafkaPublishesNothing", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockKafka := kafkaMocks.NewMockClient(ctrl)

		notifier := New(&config.Config{}, mockKafka)
		notifier.AttemptRecorded(context.Background(), &scheduleModel.AttemptResult{ScheduleID: "sch-1"})
	})
}

func TestScheduleTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockKafka := kafkaMocks.NewMockClient(ctrl)

	cfg := &config.Config{}
	cfg.Kafka.Enable = true
	cfg.Kafka.Topics.Schedules = "openrun.schedules"

	published := make(chan kafka.Message, 1)
	mockKafka.EXPECT().
		SendMessages(gomock.Any(), "openrun.schedules", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, messages ...kafka.Message) error {
			published <- messages[0]
			return nil
		})

	notifier := New(cfg, mockKafka)
	notifier.ScheduleTerminal(context.Background(), testSchedule(scheduleModel.StatusCompleted), &scheduleModel.ResultSummary{
		Outcome:       scheduleModel.OutcomeSuccess,
		TotalAttempts: 3,
	})

	select {
	case msg := <-published:
		require.Equal(t, "sch-1", msg.Key)
		event, ok := msg.Value.(TerminalEvent)
		require.True(t, ok)
		assert.Equal(t, scheduleModel.StatusCompleted, event.Status)
	case <-time.After(time.Second):
		t.Fatal("terminal event was never published")
	}
}

func TestFormatTerminalMessage(t *testing.T) {
	t.Run("CompletedWithWinner", func(t *testing.T) {
		text := formatTerminalMessage(testSchedule(scheduleModel.StatusCompleted), &scheduleModel.ResultSummary{
			Outcome:           scheduleModel.OutcomeSuccess,
			ReservationNumber: "B-042",
			SeatProductCode:   "00040009",
			TotalAttempts:     7,
		})

		assert.Contains(t, text, "Reservation secured")
		assert.Contains(t, text, "B-042")
		assert.Contains(t, text, "00040009")
	})

	t.Run("SurplusFlagged", func(t *testing.T) {
		text := formatTerminalMessage(testSchedule(scheduleModel.StatusCompleted), &scheduleModel.ResultSummary{
			Outcome:           scheduleModel.OutcomeSuccess,
			SurplusAccountIDs: []string{"acc-2"},
		})

		assert.Contains(t, text, "manual review")
		assert.Contains(t, text, "acc-2")
	})

	t.Run("DryRun", func(t *testing.T) {
		schedule := testSchedule(scheduleModel.StatusCompleted)
		schedule.DryRun = true

		text := formatTerminalMessage(schedule, &scheduleModel.ResultSummary{Outcome: scheduleModel.OutcomeWouldAttempt})

		assert.True(t, strings.Contains(text, "Dry run"))
	})

	t.Run("Failed", func(t *testing.T) {
		text := formatTerminalMessage(testSchedule(scheduleModel.StatusFailed), &scheduleModel.ResultSummary{
			Outcome: scheduleModel.OutcomeSoldOut,
			Reason:  "all seats exhausted",
		})

		assert.Contains(t, text, "failed")
		assert.Contains(t, text, "all seats exhausted")
	})
}
