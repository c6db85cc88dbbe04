// Package notify fans schedule activity out to operators (Telegram) and to
// downstream consumers (Kafka). Delivery is best effort: nothing here is
// allowed to slow down or fail a reservation attempt.
package notify

//go:generate go run go.uber.org/mock/mockgen -source=./notify.go -destination=./mocks/notify_mock.go -package=mocks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"openrun/config"
	"openrun/infras/kafka"
	scheduleModel "openrun/internal/domains/schedule/model"
)

type Notifier interface {
	// AttemptRecorded streams one attempt row to the audit topic.
	AttemptRecorded(ctx context.Context, attempt *scheduleModel.AttemptResult)
	// ScheduleTerminal announces a terminal transition to Kafka and Telegram.
	ScheduleTerminal(ctx context.Context, schedule *scheduleModel.ReservationSchedule, summary *scheduleModel.ResultSummary)
}

// TerminalEvent is the payload published on the schedules topic.
type TerminalEvent struct {
	ScheduleID    string                       `json:"schedule_id"`
	CampingSiteID string                       `json:"camping_site_id"`
	TargetDate    string                       `json:"target_date"`
	Status        string                       `json:"status"`
	DryRun        bool                         `json:"dry_run"`
	Summary       *scheduleModel.ResultSummary `json:"summary"`
	OccurredAt    time.Time                    `json:"occurred_at"`
}

type notifier struct {
	config *config.Config
	kafka  kafka.Client
	http   *http.Client
}

func (n *notifier) AttemptRecorded(ctx context.Context, attempt *scheduleModel.AttemptResult) {
	if !n.config.Kafka.Enable {
		return
	}

	go func(ctx context.Context) {
		message := kafka.Message{Key: attempt.ScheduleID, Value: attempt}
		if err := n.kafka.SendMessages(ctx, n.config.Kafka.Topics.Attempts, message); err != nil {
			log.Warn().Err(err).Str("scheduleID", attempt.ScheduleID).Msg("[AttemptRecorded] publish failed")
		}
	}(context.WithoutCancel(ctx))
}

func (n *notifier) ScheduleTerminal(ctx context.Context, schedule *scheduleModel.ReservationSchedule, summary *scheduleModel.ResultSummary) {
	ctx = context.WithoutCancel(ctx)

	if n.config.Kafka.Enable {
		go func() {
			event := TerminalEvent{
				ScheduleID:    schedule.ID,
				CampingSiteID: schedule.CampingSiteID,
				TargetDate:    schedule.TargetDate,
				Status:        schedule.Status,
				DryRun:        schedule.DryRun,
				Summary:       summary,
				OccurredAt:    time.Now(),
			}

			message := kafka.Message{Key: schedule.ID, Value: event}
			if err := n.kafka.SendMessages(ctx, n.config.Kafka.Topics.Schedules, message); err != nil {
				log.Warn().Err(err).Str("scheduleID", schedule.ID).Msg("[ScheduleTerminal] publish failed")
			}
		}()
	}

	if n.config.External.Telegram.Enable {
		go n.sendTelegram(ctx, formatTerminalMessage(schedule, summary))
	}
}

func (n *notifier) sendTelegram(ctx context.Context, text string) {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.config.External.Telegram.BaseURL, n.config.External.Telegram.BotToken)

	form := url.Values{
		"chat_id":    {n.config.External.Telegram.ChatID},
		"text":       {text},
		"parse_mode": {"HTML"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		log.Warn().Err(err).Msg("[SendTelegram] building request failed")

		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("[SendTelegram] delivery failed")

		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("[SendTelegram] rejected by telegram")
	}
}

func formatTerminalMessage(schedule *scheduleModel.ReservationSchedule, summary *scheduleModel.ResultSummary) string {
	var b strings.Builder

	switch schedule.Status {
	case scheduleModel.StatusCompleted:
		if schedule.DryRun {
			b.WriteString("🧪 <b>Dry run finished</b>\n")
		} else {
			b.WriteString("✅ <b>Reservation secured</b>\n")
		}
	case scheduleModel.StatusFailed:
		b.WriteString("❌ <b>Reservation failed</b>\n")
	case scheduleModel.StatusCancelled:
		b.WriteString("🚫 <b>Schedule cancelled</b>\n")
	}

	fmt.Fprintf(&b, "Target date: %s\n", schedule.TargetDate)

	if summary != nil {
		if summary.ReservationNumber != "" {
			fmt.Fprintf(&b, "Reservation: <code>%s</code>\n", summary.ReservationNumber)
		}
		if summary.SeatProductCode != "" {
			fmt.Fprintf(&b, "Seat: %s\n", summary.SeatProductCode)
		}
		fmt.Fprintf(&b, "Attempts: %d\n", summary.TotalAttempts)
		if len(summary.SurplusAccountIDs) > 0 {
			fmt.Fprintf(&b, "⚠️ Surplus successes need manual review: %s\n", strings.Join(summary.SurplusAccountIDs, ", "))
		}
		if summary.Reason != "" {
			fmt.Fprintf(&b, "Reason: %s\n", summary.Reason)
		}
	}

	return b.String()
}

// New builds the Notifier. The HTTP client is shared across telegram sends.
func New(conf *config.Config, kafkaClient kafka.Client) Notifier {
	return &notifier{
		config: conf,
		kafka:  kafkaClient,
		http:   &http.Client{Timeout: 10 * time.Second},
	}
}
