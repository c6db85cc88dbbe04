// Package engine runs reservation schedules: clock sync against the remote
// server, session warm-up, and the time-staggered multi-account wave that
// fires at the instant a sale opens.
package engine

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"

	"openrun/config"
	"openrun/infras/otel"
	"openrun/internal/adapter"
	accountModel "openrun/internal/domains/account/model"
	accountRepository "openrun/internal/domains/account/repository"
	scheduleModel "openrun/internal/domains/schedule/model"
	scheduleRepository "openrun/internal/domains/schedule/repository"
	seatModel "openrun/internal/domains/seat/model"
	seatRepository "openrun/internal/domains/seat/repository"
	siteModel "openrun/internal/domains/site/model"
	siteRepository "openrun/internal/domains/site/repository"
	"openrun/internal/archive"
	"openrun/internal/engine/clock"
	"openrun/internal/notify"
	"openrun/shared"
	sharedDto "openrun/shared/dto"
)

const (
	defaultPollIntervalMS = 500

	// how far before the fire instant the coarse wait hands over to a final
	// offset recomputation
	fineWaitWindow = 2 * time.Second
)

type Engine interface {
	Start()
	Stop()
	// Cancel cooperatively stops a running schedule. Reports false when the
	// schedule has no active run in this process.
	Cancel(scheduleID string) bool
}

type run struct {
	cancel    context.CancelFunc
	cancelled atomic.Bool
}

type engineImpl struct {
	config       *config.Config
	otel         otel.Otel
	scheduleRepo scheduleRepository.Schedule
	siteRepo     siteRepository.Site
	accountRepo  accountRepository.Account
	seatRepo     seatRepository.Seat
	factory      adapter.Factory
	warmer       Warmer
	notifier     notify.Notifier
	archiver     archive.Archiver

	mu     sync.Mutex
	runs   map[string]*run
	stop   context.CancelFunc
	wg     sync.WaitGroup
	active bool
}

func (e *engineImpl) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.stop = cancel
	e.active = true

	e.wg.Add(1)
	go e.loop(ctx)

	log.Info().Msg("[Engine] started")
}

func (e *engineImpl) Stop() {
	e.mu.Lock()
	if !e.active {
		e.mu.Unlock()

		return
	}
	e.active = false
	stop := e.stop
	e.mu.Unlock()

	stop()
	e.wg.Wait()

	log.Info().Msg("[Engine] stopped")
}

func (e *engineImpl) Cancel(scheduleID string) bool {
	e.mu.Lock()
	r, ok := e.runs[scheduleID]
	e.mu.Unlock()

	if !ok {
		return false
	}

	r.cancelled.Store(true)
	r.cancel()

	log.Info().Str("scheduleID", scheduleID).Msg("[Engine] cooperative cancellation requested")

	return true
}

func (e *engineImpl) loop(ctx context.Context) {
	defer e.wg.Done()

	pollMS := e.config.Engine.PollIntervalMS
	if pollMS <= 0 {
		pollMS = defaultPollIntervalMS
	}

	ticker := time.NewTicker(time.Duration(pollMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.scan(ctx)
		}
	}
}

func (e *engineImpl) scan(ctx context.Context) {
	schedules, err := e.scheduleRepo.DueSchedules(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("[Engine] scan failed")

		return
	}

	for i := range schedules {
		schedule := schedules[i]

		e.mu.Lock()
		_, active := e.runs[schedule.ID]
		e.mu.Unlock()

		if active {
			continue
		}

		switch schedule.Status {
		case scheduleModel.StatusPending:
			warmStart := schedule.ExecuteAt.Add(-time.Duration(schedule.SessionWarmupMinutes) * time.Minute)
			if time.Now().Before(warmStart) {
				continue
			}

			e.launch(ctx, schedule)
		case scheduleModel.StatusWarming:
			// leftover from a previous process; resume the window
			e.launch(ctx, schedule)
		case scheduleModel.StatusRunning:
			// a running row without an in-process run cannot be resumed
			e.finalizeInterrupted(ctx, schedule)
		}
	}
}

func (e *engineImpl) launch(ctx context.Context, schedule scheduleModel.ReservationSchedule) {
	runCtx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel}

	e.mu.Lock()
	e.runs[schedule.ID] = r
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() {
			e.mu.Lock()
			delete(e.runs, schedule.ID)
			e.mu.Unlock()
			cancel()
		}()

		e.execute(runCtx, r, schedule)
	}()
}

func (e *engineImpl) execute(ctx context.Context, r *run, schedule scheduleModel.ReservationSchedule) {
	logger := log.With().Str("scheduleID", schedule.ID).Logger()

	site, err := e.siteRepo.Get(ctx, shared.FilterByID(schedule.CampingSiteID, siteModel.FieldID, siteModel.TableName))
	if err != nil {
		logger.Error().Err(err).Msg("[Engine] camping site lookup failed")
		e.finalize(ctx, &schedule, scheduleModel.StatusFailed, nil, "camping site lookup failed")

		return
	}

	client, err := e.factory.ForSite(&site)
	if err != nil {
		logger.Error().Err(err).Msg("[Engine] no adapter for site")
		e.finalize(ctx, &schedule, scheduleModel.StatusFailed, nil, err.Error())

		return
	}

	if schedule.Status == scheduleModel.StatusPending {
		ok, err := e.scheduleRepo.TransitionStatus(ctx, schedule.ID, scheduleModel.StatusPending, scheduleModel.StatusWarming)
		if err != nil || !ok {
			logger.Warn().Err(err).Msg("[Engine] pending schedule moved under us, abandoning run")

			return
		}
		schedule.Status = scheduleModel.StatusWarming
	}

	// one forced measurement right before the warm-up window, then periodic
	// resync in the background
	clockSync := clock.New(client, e.config, e.otel)
	if _, err := clockSync.Measure(ctx); err != nil {
		logger.Warn().Err(err).Msg("[Engine] clock sync failed, proceeding at zero offset")
	}
	go clockSync.Run(ctx)

	accounts, err := e.loadAccounts(ctx, schedule)
	if err != nil {
		logger.Error().Err(err).Msg("[Engine] loading accounts failed")
		e.finalize(ctx, &schedule, scheduleModel.StatusFailed, nil, "loading accounts failed")

		return
	}

	warmed := e.warmer.Warm(ctx, client, schedule.ID, accounts)
	if len(warmed) == 0 {
		e.finalize(ctx, &schedule, scheduleModel.StatusFailed, nil, "no session could be warmed")

		return
	}

	if !e.waitForFireInstant(ctx, clockSync, schedule) {
		// operator cancellation while waiting has already made the row
		// terminal through the schedule service
		if r.cancelled.Load() {
			e.finalize(ctx, &schedule, scheduleModel.StatusCancelled, nil, "cancelled by operator")
		}

		return
	}

	ok, err := e.scheduleRepo.TransitionStatus(ctx, schedule.ID, scheduleModel.StatusWarming, scheduleModel.StatusRunning)
	if err != nil || !ok {
		logger.Warn().Err(err).Msg("[Engine] warming schedule moved under us, abandoning run")

		return
	}
	schedule.Status = scheduleModel.StatusRunning

	seats, err := e.loadSeats(ctx, schedule)
	if err != nil {
		logger.Error().Err(err).Msg("[Engine] loading seats failed")
		e.finalize(ctx, &schedule, scheduleModel.StatusFailed, nil, "loading seats failed")

		return
	}

	winner, surplus, total := e.runWave(ctx, client, schedule, warmed, seats)

	switch {
	case winner != nil:
		summary := &scheduleModel.ResultSummary{
			Outcome:           winner.Outcome,
			WinnerAccountID:   winner.AccountID,
			SeatProductCode:   winner.SeatProductCode,
			ReservationNumber: winner.ReservationNumber,
			TotalAttempts:     total,
			SurplusAccountIDs: surplus,
		}
		e.finalize(ctx, &schedule, scheduleModel.StatusCompleted, summary, "")
	case r.cancelled.Load():
		summary := &scheduleModel.ResultSummary{TotalAttempts: total, Reason: "cancelled by operator"}
		e.finalize(ctx, &schedule, scheduleModel.StatusCancelled, summary, "")
	default:
		summary := &scheduleModel.ResultSummary{TotalAttempts: total, Reason: "all accounts exhausted"}
		e.finalize(ctx, &schedule, scheduleModel.StatusFailed, summary, "")
	}
}

// FireInstant maps the server-side open instant onto the local clock: a
// server that runs ahead means firing earlier locally, and pre-fire shaves a
// little more to land the request as the sale opens.
func FireInstant(executeAt time.Time, offset time.Duration, preFireMS int) time.Time {
	return executeAt.Add(-offset).Add(-time.Duration(preFireMS) * time.Millisecond)
}

// waitForFireInstant sleeps until the fire instant. The coarse wait ends
// early so the instant is recomputed with the freshest offset.
func (e *engineImpl) waitForFireInstant(ctx context.Context, clockSync clock.Synchronizer, schedule scheduleModel.ReservationSchedule) bool {
	fireAt := FireInstant(schedule.ExecuteAt, clockSync.Offset(), schedule.PreFireMS)
	if coarse := time.Until(fireAt) - fineWaitWindow; coarse > 0 {
		if !sleepCtx(ctx, coarse) {
			return false
		}
	}

	fireAt = FireInstant(schedule.ExecuteAt, clockSync.Offset(), schedule.PreFireMS)

	return sleepCtx(ctx, time.Until(fireAt))
}

func (e *engineImpl) runWave(ctx context.Context, client adapter.Client, schedule scheduleModel.ReservationSchedule, warmed []WarmSession, seats []seatModel.Seat) (*scheduleModel.AttemptResult, []string, int) {
	board := NewBoard()
	slot := &winnerSlot{}
	ordinal := &atomic.Int64{}
	executor := NewExecutor(client, e.config)
	policy := NewPolicy(&schedule, e.config)

	waveCtx, winCancel := context.WithCancel(ctx)
	defer winCancel()

	var wg sync.WaitGroup
	for i := range warmed {
		w := &worker{
			index:    i,
			schedule: &schedule,
			ws:       &warmed[i],
			executor: executor,
			policy:   policy,
			selector: NewSelector(board, seats),
			board:    board,
			slot:     slot,
			repo:     e.scheduleRepo,
			notifier: e.notifier,
			win:      winCancel,
			ordinal:  ordinal,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(waveCtx)
		}()
	}
	wg.Wait()

	winner, surplus := slot.snapshot()

	return winner, surplus, int(ordinal.Load())
}

// finalize makes the schedule terminal: CAS status transition, persisted
// summary, notification, audit archive. Runs on a detached context so
// cancellation cannot lose the result.
func (e *engineImpl) finalize(ctx context.Context, schedule *scheduleModel.ReservationSchedule, status string, summary *scheduleModel.ResultSummary, reason string) {
	ctx = context.WithoutCancel(ctx)

	if summary == nil {
		summary = &scheduleModel.ResultSummary{Reason: reason}
	}
	if summary.Outcome == "" && status == scheduleModel.StatusFailed {
		summary.Outcome = scheduleModel.OutcomeSoldOut
	}

	ok, err := e.scheduleRepo.TransitionStatus(ctx, schedule.ID, schedule.Status, status)
	if err != nil {
		log.Error().Err(err).Str("scheduleID", schedule.ID).Msg("[Engine] terminal transition failed")

		return
	}
	if !ok {
		log.Warn().
			Str("scheduleID", schedule.ID).
			Str("from", schedule.Status).
			Str("to", status).
			Msg("[Engine] terminal transition rejected, leaving row as is")

		return
	}
	schedule.Status = status

	payload, err := json.Marshal(summary)
	if err == nil {
		if err := e.scheduleRepo.SetResult(ctx, schedule.ID, status, types.JSONText(payload)); err != nil {
			log.Error().Err(err).Str("scheduleID", schedule.ID).Msg("[Engine] persisting result failed")
		}
		schedule.Result = types.JSONText(payload)
	}

	e.notifier.ScheduleTerminal(ctx, schedule, summary)

	attempts, err := e.scheduleRepo.AttemptsBySchedule(ctx, schedule.ID)
	if err != nil {
		log.Warn().Err(err).Str("scheduleID", schedule.ID).Msg("[Engine] attempt log fetch failed, skipping archive")

		return
	}

	if _, err := e.archiver.ArchiveSchedule(ctx, schedule, summary, attempts); err != nil {
		log.Warn().Err(err).Str("scheduleID", schedule.ID).Msg("[Engine] archive failed")
	}
}

func (e *engineImpl) finalizeInterrupted(ctx context.Context, schedule scheduleModel.ReservationSchedule) {
	log.Warn().Str("scheduleID", schedule.ID).Msg("[Engine] found orphaned running schedule, marking failed")

	e.finalize(ctx, &schedule, scheduleModel.StatusFailed, &scheduleModel.ResultSummary{Reason: "interrupted by process restart"}, "")
}

func (e *engineImpl) loadAccounts(ctx context.Context, schedule scheduleModel.ReservationSchedule) ([]accountModel.Account, error) {
	filter := sharedDto.FilterGroup{
		Operator: sharedDto.FilterGroupOperatorAnd,
		Filters: []any{
			sharedDto.Filter{
				Field:    accountModel.FieldID,
				Table:    accountModel.TableName,
				Value:    []string(schedule.AccountIDs),
				Operator: sharedDto.FilterOperatorIn,
			},
			sharedDto.Filter{
				Field:    accountModel.FieldIsActive,
				Table:    accountModel.TableName,
				Value:    true,
				Operator: sharedDto.FilterOperatorEq,
			},
		},
	}

	accounts, err := e.accountRepo.GetAll(ctx, sharedDto.QueryParams{}, filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(accounts, func(i, j int) bool { return accounts[i].Priority < accounts[j].Priority })

	return accounts, nil
}

func (e *engineImpl) loadSeats(ctx context.Context, schedule scheduleModel.ReservationSchedule) ([]seatModel.Seat, error) {
	if len(schedule.SeatIDs) == 0 {
		return nil, nil
	}

	filter := sharedDto.FilterGroup{
		Operator: sharedDto.FilterGroupOperatorAnd,
		Filters: []any{
			sharedDto.Filter{
				Field:    seatModel.FieldID,
				Table:    seatModel.TableName,
				Value:    []string(schedule.SeatIDs),
				Operator: sharedDto.FilterOperatorIn,
			},
		},
	}

	seats, err := e.seatRepo.GetAll(ctx, sharedDto.QueryParams{}, filter)
	if err != nil {
		return nil, err
	}

	// the schedule's seat order is the attempt priority, not the query order
	byID := make(map[string]seatModel.Seat, len(seats))
	for _, seat := range seats {
		byID[seat.ID] = seat
	}

	ordered := make([]seatModel.Seat, 0, len(seats))
	for _, id := range schedule.SeatIDs {
		if seat, ok := byID[id]; ok {
			ordered = append(ordered, seat)
		}
	}

	return ordered, nil
}

func New(
	conf *config.Config,
	o otel.Otel,
	scheduleRepo scheduleRepository.Schedule,
	siteRepo siteRepository.Site,
	accountRepo accountRepository.Account,
	seatRepo seatRepository.Seat,
	factory adapter.Factory,
	w Warmer,
	notifier notify.Notifier,
	archiver archive.Archiver,
) Engine {
	return &engineImpl{
		config:       conf,
		otel:         o,
		scheduleRepo: scheduleRepo,
		siteRepo:     siteRepo,
		accountRepo:  accountRepo,
		seatRepo:     seatRepo,
		factory:      factory,
		warmer:       w,
		notifier:     notifier,
		archiver:     archiver,
		runs:         make(map[string]*run),
	}
}
