package engine_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"openrun/config"
	otelMocks "openrun/infras/otel/mocks"
	"openrun/internal/adapter"
	adapterMocks "openrun/internal/adapter/mocks"
	accountModel "openrun/internal/domains/account/model"
	"openrun/internal/engine"
	cacheMocks "openrun/shared/cache/mocks"
)

func warmerConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Engine.WarmParallelism = 2
	cfg.Engine.SessionTTLMinutes = 30

	return cfg
}

func warmerAccounts(ids ...string) []accountModel.Account {
	accounts := make([]accountModel.Account, len(ids))
	for i, id := range ids {
		accounts[i] = accountModel.Account{ID: id, Username: "camper-" + id, Password: "secret", Priority: i, IsActive: true}
	}

	return accounts
}

func TestWarm(t *testing.T) {
	t.Run("FailedLoginExcludesOnlyThatAccount", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)
		cache := cacheMocks.NewMockRedisCache(ctrl)
		cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		client.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, accountID, username, _ string) (*adapter.Session, error) {
				if accountID == "acc-2" {
					return nil, adapter.ErrInvalidCredential
				}

				return &adapter.Session{AccountID: accountID, Username: username, CreatedAt: time.Now()}, nil
			}).
			Times(3)

		warmer := engine.NewWarmer(warmerConfig(), cache, otelMocks.NewOtel())

		warmed := warmer.Warm(context.Background(), client, "sch-1", warmerAccounts("acc-1", "acc-2", "acc-3"))

		require.Len(t, warmed, 2)
		// surviving sessions keep the priority order
		assert.Equal(t, "acc-1", warmed[0].Account.ID)
		assert.Equal(t, "acc-3", warmed[1].Account.ID)
	})

	t.Run("ParallelismBounded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)
		cache := cacheMocks.NewMockRedisCache(ctrl)
		cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		var inFlight, peak atomic.Int32
		var mu sync.Mutex

		client.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, accountID, username, _ string) (*adapter.Session, error) {
				current := inFlight.Add(1)
				mu.Lock()
				if current > peak.Load() {
					peak.Store(current)
				}
				mu.Unlock()

				time.Sleep(20 * time.Millisecond)
				inFlight.Add(-1)

				return &adapter.Session{AccountID: accountID, Username: username}, nil
			}).
			Times(5)

		warmer := engine.NewWarmer(warmerConfig(), cache, otelMocks.NewOtel())

		warmed := warmer.Warm(context.Background(), client, "sch-1", warmerAccounts("a", "b", "c", "d", "e"))

		assert.Len(t, warmed, 5)
		assert.LessOrEqual(t, peak.Load(), int32(2))
	})

	t.Run("MirrorsWarmStateToRedis", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)
		cache := cacheMocks.NewMockRedisCache(ctrl)

		client.EXPECT().
			Login(gomock.Any(), "acc-1", gomock.Any(), gomock.Any()).
			Return(&adapter.Session{AccountID: "acc-1", Username: "camper-acc-1"}, nil)

		cache.EXPECT().
			Save(gomock.Any(), "warm:sch-1:acc-1", gomock.Any(), 30*60).
			Return(nil)

		warmer := engine.NewWarmer(warmerConfig(), cache, otelMocks.NewOtel())

		warmed := warmer.Warm(context.Background(), client, "sch-1", warmerAccounts("acc-1"))

		assert.Len(t, warmed, 1)
	})
}
