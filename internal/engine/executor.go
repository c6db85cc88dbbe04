package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"openrun/config"
	"openrun/internal/adapter"
	scheduleModel "openrun/internal/domains/schedule/model"
)

const defaultHTTPTimeoutSeconds = 5

// Attempt is the classified result of one booking try.
type Attempt struct {
	Outcome           string
	ProductCode       string
	ReservationNumber string
	Duration          time.Duration
	Err               error
}

// Executor drives a single booking attempt end to end: live session, seat
// discovery for the any-seat candidate, the booking call, classification.
type Executor struct {
	client adapter.Client
	config *config.Config
}

// Execute runs one attempt for one account on one candidate. The warm
// session is re-established in place when it has expired.
func (e *Executor) Execute(ctx context.Context, ws *WarmSession, targetDate string, candidate Candidate, dryRun bool) Attempt {
	start := time.Now()

	attempt := func(outcome, productCode, reservationNumber string, err error) Attempt {
		return Attempt{
			Outcome:           outcome,
			ProductCode:       productCode,
			ReservationNumber: reservationNumber,
			Duration:          time.Since(start),
			Err:               err,
		}
	}

	if err := e.ensureSession(ctx, ws); err != nil {
		return attempt(Classify(err), candidate.ProductCode, "", err)
	}

	productCode := candidate.ProductCode

	if candidate.Any {
		discovered, err := e.discoverSeat(ctx, ws.Session, targetDate)
		if err != nil {
			return attempt(Classify(err), anySeatCode, "", err)
		}

		productCode = discovered
	}

	if dryRun {
		// identical path up to the state-changing submit; the reservation
		// number is deterministic so repeated dry runs are comparable
		synthetic := uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "%s:%s:%s", ws.Account.ID, productCode, targetDate))

		return attempt(scheduleModel.OutcomeWouldAttempt, productCode, "DRY-"+synthetic.String(), nil)
	}

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	booking, err := e.client.Book(callCtx, ws.Session, targetDate, productCode)
	if err != nil {
		if errors.Is(err, adapter.ErrSessionExpired) {
			// force a fresh login on the next attempt
			ws.Session = nil
		}

		return attempt(Classify(err), productCode, "", err)
	}

	return attempt(scheduleModel.OutcomeSuccess, booking.ProductCode, booking.ReservationNumber, nil)
}

func (e *Executor) ensureSession(ctx context.Context, ws *WarmSession) error {
	if ws.Session != nil && !ws.Session.Expired(time.Now()) {
		return nil
	}

	log.Info().Str("accountID", ws.Account.ID).Msg("[Execute] re-establishing session")

	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	session, err := e.client.Login(callCtx, ws.Account.ID, ws.Account.Username, ws.Account.Password)
	if err != nil {
		return err
	}

	ws.Session = session

	return nil
}

func (e *Executor) discoverSeat(ctx context.Context, session *adapter.Session, targetDate string) (string, error) {
	callCtx, cancel := e.callContext(ctx)
	defer cancel()

	seats, err := e.client.CheckAvailability(callCtx, session, targetDate)
	if err != nil {
		return "", err
	}

	for _, seat := range seats {
		if seat.Available {
			return seat.ProductCode, nil
		}
	}

	return "", errors.Wrap(adapter.ErrSoldOut, "no seat available for discovery")
}

func (e *Executor) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeoutSeconds := e.config.Engine.HTTPTimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultHTTPTimeoutSeconds
	}

	return context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
}

// Classify folds an adapter error into the attempt outcome taxonomy.
// Timeouts and unrecognized transport failures count as network errors.
func Classify(err error) string {
	switch {
	case err == nil:
		return scheduleModel.OutcomeSuccess
	case errors.Is(err, adapter.ErrSoldOut):
		return scheduleModel.OutcomeSoldOut
	case errors.Is(err, adapter.ErrInvalidCredential):
		return scheduleModel.OutcomeInvalidCredential
	case errors.Is(err, adapter.ErrRateLimited):
		return scheduleModel.OutcomeRateLimited
	case errors.Is(err, adapter.ErrCaptchaRequired):
		return scheduleModel.OutcomeCaptchaRequired
	default:
		return scheduleModel.OutcomeNetworkError
	}
}

func NewExecutor(client adapter.Client, conf *config.Config) *Executor {
	return &Executor{client: client, config: conf}
}
