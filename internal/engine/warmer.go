package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"openrun/config"
	"openrun/infras/otel"
	"openrun/internal/adapter"
	accountModel "openrun/internal/domains/account/model"
	"openrun/shared/cache"
	"openrun/shared/constant"
)

const (
	defaultWarmParallelism = 3

	warmCachePrefix = "warm"
)

// WarmSession pairs an account with its pre-established session. Order in a
// warm result follows the account order handed in (priority order).
type WarmSession struct {
	Account accountModel.Account
	Session *adapter.Session
}

// warmState is what gets mirrored to Redis for operator inspection. The
// in-process session stays authoritative; this copy is advisory.
type warmState struct {
	AccountID string    `json:"account_id"`
	Username  string    `json:"username"`
	WarmedAt  time.Time `json:"warmed_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Warmer interface {
	Warm(ctx context.Context, client adapter.Client, scheduleID string, accounts []accountModel.Account) []WarmSession
}

type warmer struct {
	config *config.Config
	cache  cache.RedisCache
	otel   otel.Otel
}

// Warm logs the accounts in concurrently with bounded parallelism. A failed
// login drops that account from the wave and never blocks the others.
func (w *warmer) Warm(ctx context.Context, client adapter.Client, scheduleID string, accounts []accountModel.Account) []WarmSession {
	ctx, scope := w.otel.NewScope(ctx, constant.OtelEngineScopeName, constant.OtelEngineScopeName+".Warm")
	defer scope.End()

	parallelism := w.config.Engine.WarmParallelism
	if parallelism <= 0 {
		parallelism = defaultWarmParallelism
	}

	sessions := make([]*adapter.Session, len(accounts))

	group := &errgroup.Group{}
	group.SetLimit(parallelism)

	for i, account := range accounts {
		group.Go(func() error {
			session, err := client.Login(ctx, account.ID, account.Username, account.Password)
			if err != nil {
				log.Warn().Err(err).
					Str("scheduleID", scheduleID).
					Str("accountID", account.ID).
					Msg("[Warm] login failed, account excluded from wave")

				return nil
			}

			sessions[i] = session
			w.mirror(ctx, scheduleID, session)

			return nil
		})
	}
	_ = group.Wait()

	warmed := make([]WarmSession, 0, len(accounts))
	for i, account := range accounts {
		if sessions[i] == nil {
			continue
		}

		warmed = append(warmed, WarmSession{Account: account, Session: sessions[i]})
	}

	log.Info().
		Str("scheduleID", scheduleID).
		Int("requested", len(accounts)).
		Int("warmed", len(warmed)).
		Msg("[Warm] session warm-up finished")

	return warmed
}

func (w *warmer) mirror(ctx context.Context, scheduleID string, session *adapter.Session) {
	key := fmt.Sprintf("%s:%s:%s", warmCachePrefix, scheduleID, session.AccountID)

	state := warmState{
		AccountID: session.AccountID,
		Username:  session.Username,
		WarmedAt:  session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}

	ttl := w.config.Engine.SessionTTLMinutes * constant.MinutesToSeconds
	if err := w.cache.Save(ctx, key, state, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[Warm] failed to mirror warm state")
	}
}

func NewWarmer(conf *config.Config, redisCache cache.RedisCache, o otel.Otel) Warmer {
	return &warmer{
		config: conf,
		cache:  redisCache,
		otel:   o,
	}
}
