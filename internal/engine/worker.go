package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	scheduleModel "openrun/internal/domains/schedule/model"
	scheduleRepository "openrun/internal/domains/schedule/repository"
	"openrun/internal/notify"
)

// winnerSlot guards the single-winner invariant in process. The database's
// partial unique index is the final authority for real bookings; the slot
// keeps siblings from even trying once somebody has won.
type winnerSlot struct {
	mu      sync.Mutex
	winner  *scheduleModel.AttemptResult
	surplus []string
}

func (s *winnerSlot) claim(attempt *scheduleModel.AttemptResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.winner != nil {
		return false
	}

	s.winner = attempt

	return true
}

func (s *winnerSlot) addSurplus(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.surplus = append(s.surplus, accountID)
}

func (s *winnerSlot) snapshot() (*scheduleModel.AttemptResult, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.winner, s.surplus
}

// worker drives one account through the wave: staggered start, seat walk,
// retry chains, winner claim.
type worker struct {
	index    int
	schedule *scheduleModel.ReservationSchedule
	ws       *WarmSession
	executor *Executor
	policy   Policy
	selector *Selector
	board    *Board
	slot     *winnerSlot
	repo     scheduleRepository.Schedule
	notifier notify.Notifier
	win      context.CancelFunc
	ordinal  *atomic.Int64
}

func (w *worker) run(ctx context.Context) {
	waveDelay := time.Duration(w.index) * time.Duration(w.schedule.WaveIntervalMS) * time.Millisecond
	if waveDelay > 0 && !sleepCtx(ctx, waveDelay) {
		return
	}

	for {
		if ctx.Err() != nil {
			return
		}

		candidate, ok := w.selector.Next()
		if !ok {
			return
		}

		if stop := w.attemptChain(ctx, candidate); stop {
			return
		}
	}
}

// attemptChain works one seat until it is won, confirmed gone, or the retry
// budget runs out. Returns true when the whole worker should stop.
func (w *worker) attemptChain(ctx context.Context, candidate Candidate) bool {
	retries := 0

	for {
		if ctx.Err() != nil {
			return true
		}

		result := w.executor.Execute(ctx, w.ws, w.schedule.TargetDate, candidate, w.schedule.DryRun)
		attempt := w.record(ctx, candidate, result)

		switch attempt.Outcome {
		case scheduleModel.OutcomeSuccess:
			if w.slot.claim(&attempt) {
				w.win()
			}

			return true
		case scheduleModel.OutcomeSurplusSuccess:
			return true
		case scheduleModel.OutcomeWouldAttempt:
			if w.slot.claim(&attempt) {
				w.win()
			}

			return true
		case scheduleModel.OutcomeSoldOut:
			w.board.MarkSoldOut(attempt.SeatProductCode)

			return false
		case scheduleModel.OutcomeInvalidCredential:
			log.Warn().
				Str("scheduleID", w.schedule.ID).
				Str("accountID", w.ws.Account.ID).
				Msg("[Worker] credential rejected, account withdrawn")

			return true
		case scheduleModel.OutcomeCaptchaRequired:
			log.Warn().
				Str("scheduleID", w.schedule.ID).
				Str("accountID", w.ws.Account.ID).
				Msg("[Worker] captcha challenge, attempt chain abandoned")

			return true
		default:
			// rate_limited / network_error consume a retry slot
			delay, ok := w.policy.Delay(retries)
			if !ok {
				return false
			}

			if attempt.Outcome == scheduleModel.OutcomeRateLimited {
				delay = w.policy.Cooldown(retries, delay)
			}

			retries++

			if !sleepCtx(ctx, delay) {
				return true
			}
		}
	}
}

// record persists the attempt row and streams it. A duplicate-success insert
// means a sibling already holds the winner row; the booking is then stored as
// surplus so the reservation number is never lost.
func (w *worker) record(ctx context.Context, candidate Candidate, result Attempt) scheduleModel.AttemptResult {
	// persistence must survive sibling cancellation
	ctx = context.WithoutCancel(ctx)

	attempt := scheduleModel.AttemptResult{
		ID:                uuid.NewString(),
		ScheduleID:        w.schedule.ID,
		AccountID:         w.ws.Account.ID,
		SeatProductCode:   result.ProductCode,
		Outcome:           result.Outcome,
		AttemptOrdinal:    int(w.ordinal.Add(1)),
		ReservationNumber: result.ReservationNumber,
		DurationMS:        result.Duration.Milliseconds(),
		AttemptedAt:       time.Now(),
	}
	if attempt.SeatProductCode == "" {
		attempt.SeatProductCode = candidate.ProductCode
	}
	if result.Err != nil {
		attempt.ErrorText = result.Err.Error()
	}

	err := w.repo.AppendAttempt(ctx, attempt)
	if errors.Is(err, scheduleRepository.ErrDuplicateSuccess) {
		attempt.Outcome = scheduleModel.OutcomeSurplusSuccess
		attempt.ID = uuid.NewString()
		w.slot.addSurplus(w.ws.Account.ID)

		log.Warn().
			Str("scheduleID", w.schedule.ID).
			Str("accountID", w.ws.Account.ID).
			Str("reservationNumber", attempt.ReservationNumber).
			Msg("[Worker] surplus success recorded, operator follow-up required")

		err = w.repo.AppendAttempt(ctx, attempt)
	}
	if err != nil {
		log.Error().Err(err).Str("scheduleID", w.schedule.ID).Msg("[Worker] failed to persist attempt")
	}

	w.notifier.AttemptRecorded(ctx, &attempt)

	return attempt
}

// sleepCtx waits for d unless the context ends first. Returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
