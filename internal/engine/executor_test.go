package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"openrun/config"
	"openrun/internal/adapter"
	adapterMocks "openrun/internal/adapter/mocks"
	accountModel "openrun/internal/domains/account/model"
	scheduleModel "openrun/internal/domains/schedule/model"
	"openrun/internal/engine"
)

func testAccount(id string) accountModel.Account {
	return accountModel.Account{ID: id, Username: "camper-" + id, Password: "secret", IsActive: true}
}

func liveSession(accountID string) *adapter.Session {
	now := time.Now()

	return &adapter.Session{
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(30 * time.Minute),
	}
}

func executorConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Engine.HTTPTimeoutSeconds = 5

	return cfg
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Nil", nil, scheduleModel.OutcomeSuccess},
		{"SoldOut", errors.Wrap(adapter.ErrSoldOut, "gone"), scheduleModel.OutcomeSoldOut},
		{"InvalidCredential", adapter.ErrInvalidCredential, scheduleModel.OutcomeInvalidCredential},
		{"RateLimited", adapter.ErrRateLimited, scheduleModel.OutcomeRateLimited},
		{"Captcha", adapter.ErrCaptchaRequired, scheduleModel.OutcomeCaptchaRequired},
		{"Timeout", context.DeadlineExceeded, scheduleModel.OutcomeNetworkError},
		{"Transport", errors.New("connection reset"), scheduleModel.OutcomeNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Classify(tt.err))
		})
	}
}

func TestExecute(t *testing.T) {
	t.Run("BooksSelectedSeat", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		client.EXPECT().
			Book(gomock.Any(), gomock.Any(), "2026-03-15", "00040009").
			Return(&adapter.Booking{ReservationNumber: "B-042", ProductCode: "00040009"}, nil)

		executor := engine.NewExecutor(client, executorConfig())
		ws := &engine.WarmSession{Account: testAccount("acc-1"), Session: liveSession("acc-1")}

		result := executor.Execute(context.Background(), ws, "2026-03-15", engine.Candidate{ProductCode: "00040009"}, false)

		assert.Equal(t, scheduleModel.OutcomeSuccess, result.Outcome)
		assert.Equal(t, "B-042", result.ReservationNumber)
	})

	t.Run("DryRunNeverBooks", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)
		// no Book expectation: any booking call fails the test

		executor := engine.NewExecutor(client, executorConfig())
		ws := &engine.WarmSession{Account: testAccount("acc-1"), Session: liveSession("acc-1")}

		first := executor.Execute(context.Background(), ws, "2026-03-15", engine.Candidate{ProductCode: "00040009"}, true)
		second := executor.Execute(context.Background(), ws, "2026-03-15", engine.Candidate{ProductCode: "00040009"}, true)

		assert.Equal(t, scheduleModel.OutcomeWouldAttempt, first.Outcome)
		assert.Contains(t, first.ReservationNumber, "DRY-")
		// synthetic number is deterministic per account/seat/date
		assert.Equal(t, first.ReservationNumber, second.ReservationNumber)
	})

	t.Run("ReloginOnExpiredSession", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		expired := liveSession("acc-1")
		expired.ExpiresAt = time.Now().Add(-time.Minute)

		gomock.InOrder(
			client.EXPECT().
				Login(gomock.Any(), "acc-1", "camper-acc-1", "secret").
				Return(liveSession("acc-1"), nil),
			client.EXPECT().
				Book(gomock.Any(), gomock.Any(), "2026-03-15", "00040009").
				Return(&adapter.Booking{ReservationNumber: "B-043", ProductCode: "00040009"}, nil),
		)

		executor := engine.NewExecutor(client, executorConfig())
		ws := &engine.WarmSession{Account: testAccount("acc-1"), Session: expired}

		result := executor.Execute(context.Background(), ws, "2026-03-15", engine.Candidate{ProductCode: "00040009"}, false)

		assert.Equal(t, scheduleModel.OutcomeSuccess, result.Outcome)
		assert.False(t, ws.Session.Expired(time.Now()))
	})

	t.Run("ReloginRejectedClassifiesCredential", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		client.EXPECT().
			Login(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, adapter.ErrInvalidCredential)

		executor := engine.NewExecutor(client, executorConfig())
		ws := &engine.WarmSession{Account: testAccount("acc-1")}

		result := executor.Execute(context.Background(), ws, "2026-03-15", engine.Candidate{ProductCode: "00040009"}, false)

		assert.Equal(t, scheduleModel.OutcomeInvalidCredential, result.Outcome)
	})

	t.Run("AnySeatDiscovery", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		gomock.InOrder(
			client.EXPECT().
				CheckAvailability(gomock.Any(), gomock.Any(), "2026-03-15").
				Return([]adapter.Seat{
					{ProductCode: "00040001", Available: false},
					{ProductCode: "00040002", Available: true},
				}, nil),
			client.EXPECT().
				Book(gomock.Any(), gomock.Any(), "2026-03-15", "00040002").
				Return(&adapter.Booking{ReservationNumber: "B-044", ProductCode: "00040002"}, nil),
		)

		executor := engine.NewExecutor(client, executorConfig())
		ws := &engine.WarmSession{Account: testAccount("acc-1"), Session: liveSession("acc-1")}

		result := executor.Execute(context.Background(), ws, "2026-03-15", engine.Candidate{ProductCode: "*", Any: true}, false)

		assert.Equal(t, scheduleModel.OutcomeSuccess, result.Outcome)
		assert.Equal(t, "00040002", result.ProductCode)
	})

	t.Run("AnySeatNothingAvailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		client.EXPECT().
			CheckAvailability(gomock.Any(), gomock.Any(), "2026-03-15").
			Return([]adapter.Seat{{ProductCode: "00040001", Available: false}}, nil)

		executor := engine.NewExecutor(client, executorConfig())
		ws := &engine.WarmSession{Account: testAccount("acc-1"), Session: liveSession("acc-1")}

		result := executor.Execute(context.Background(), ws, "2026-03-15", engine.Candidate{ProductCode: "*", Any: true}, false)

		assert.Equal(t, scheduleModel.OutcomeSoldOut, result.Outcome)
	})

	t.Run("SessionExpiryForcesNextRelogin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		client.EXPECT().
			Book(gomock.Any(), gomock.Any(), "2026-03-15", "00040009").
			Return(nil, adapter.ErrSessionExpired)

		executor := engine.NewExecutor(client, executorConfig())
		ws := &engine.WarmSession{Account: testAccount("acc-1"), Session: liveSession("acc-1")}

		result := executor.Execute(context.Background(), ws, "2026-03-15", engine.Candidate{ProductCode: "00040009"}, false)

		require.Equal(t, scheduleModel.OutcomeNetworkError, result.Outcome)
		assert.Nil(t, ws.Session)
	})
}
