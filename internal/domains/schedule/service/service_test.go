package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"openrun/config"
	"openrun/infras/otel/mocks"
	accountMocks "openrun/internal/domains/account/mocks"
	accountModel "openrun/internal/domains/account/model"
	scheduleMocks "openrun/internal/domains/schedule/mocks"
	"openrun/internal/domains/schedule/model"
	"openrun/internal/domains/schedule/model/dto"
	"openrun/internal/domains/schedule/service"
	seatMocks "openrun/internal/domains/seat/mocks"
	seatModel "openrun/internal/domains/seat/model"
	siteMocks "openrun/internal/domains/site/mocks"
	cacheMocks "openrun/shared/cache/mocks"
	"openrun/shared/constant"
)

type stubCanceller struct {
	ok     bool
	called []string
}

func (c *stubCanceller) Cancel(scheduleID string) bool {
	c.called = append(c.called, scheduleID)

	return c.ok
}

type fixture struct {
	repo        *scheduleMocks.MockSchedule
	siteRepo    *siteMocks.MockSite
	accountRepo *accountMocks.MockAccount
	seatRepo    *seatMocks.MockSeat
	cache       *cacheMocks.MockRedisCache
	canceller   *stubCanceller
	svc         service.Schedule
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:        scheduleMocks.NewMockSchedule(ctrl),
		siteRepo:    siteMocks.NewMockSite(ctrl),
		accountRepo: accountMocks.NewMockAccount(ctrl),
		seatRepo:    seatMocks.NewMockSeat(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
		canceller:   &stubCanceller{ok: true},
	}

	// invalidation runs on detached goroutines after the call returns
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, f.siteRepo, f.accountRepo, f.seatRepo, f.canceller, &config.Config{}, f.cache, mocks.NewOtel())

	return f
}

func activeAccount(id string) accountModel.Account {
	return accountModel.Account{
		ID:            id,
		CampingSiteID: "site-1",
		Username:      "camper01",
		IsActive:      true,
	}
}

func validCreateRequest() dto.CreateScheduleRequest {
	return dto.CreateScheduleRequest{
		CampingSiteID: "site-1",
		ExecuteAt:     time.Now().Add(time.Hour).Format(constant.DateFormat),
		TargetDate:    "2026-03-15",
		SeatIDs:       []string{"seat-1"},
		AccountIDs:    []string{"acc-1"},
	}
}

func TestScheduleService_Create(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*dto.CreateScheduleRequest)
		setupMock func(*fixture)
		wantErr   bool
	}{
		{
			name: "successful creation",
			setupMock: func(f *fixture) {
				f.siteRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.accountRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeAccount("acc-1"), nil)
				f.seatRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(seatModel.Seat{ID: "seat-1", CampingSiteID: "site-1"}, nil)
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, schedule model.ReservationSchedule) error {
						assert.Equal(t, model.StatusPending, schedule.Status)
						assert.NotEmpty(t, schedule.ID)

						return nil
					})
			},
		},
		{
			name: "unknown camping site",
			setupMock: func(f *fixture) {
				f.siteRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr: true,
		},
		{
			name: "inactive account rejected",
			setupMock: func(f *fixture) {
				inactive := activeAccount("acc-1")
				inactive.IsActive = false

				f.siteRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.accountRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(inactive, nil)
			},
			wantErr: true,
		},
		{
			name: "account from another site rejected",
			setupMock: func(f *fixture) {
				foreign := activeAccount("acc-1")
				foreign.CampingSiteID = "site-2"

				f.siteRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.accountRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(foreign, nil)
			},
			wantErr: true,
		},
		{
			name: "seat from another site rejected",
			setupMock: func(f *fixture) {
				f.siteRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.accountRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeAccount("acc-1"), nil)
				f.seatRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(seatModel.Seat{ID: "seat-1", CampingSiteID: "site-2"}, nil)
			},
			wantErr: true,
		},
		{
			name: "malformed execute_at",
			mutate: func(req *dto.CreateScheduleRequest) {
				req.ExecuteAt = "tomorrow at nine"
			},
			setupMock: func(f *fixture) {
				f.siteRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.accountRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(activeAccount("acc-1"), nil)
				f.seatRepo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(seatModel.Seat{ID: "seat-1", CampingSiteID: "site-1"}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			req := validCreateRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			res, err := f.svc.Create(context.Background(), req)

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, model.StatusPending, res.Status)
		})
	}
}

func storeSchedule(status string) model.ReservationSchedule {
	return model.ReservationSchedule{
		ID:            "sch-1",
		CampingSiteID: "site-1",
		Status:        status,
	}
}

func TestScheduleService_Cancel(t *testing.T) {
	tests := []struct {
		name         string
		setupMock    func(*fixture)
		wantErr      bool
		wantEngineID string
	}{
		{
			name: "pending cancels directly",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storeSchedule(model.StatusPending), nil)
				f.repo.EXPECT().TransitionStatus(gomock.Any(), "sch-1", model.StatusPending, model.StatusCancelled).Return(true, nil)
				f.repo.EXPECT().SetResult(gomock.Any(), "sch-1", model.StatusCancelled, gomock.Any()).Return(nil)
			},
		},
		{
			name: "warming cancels directly",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storeSchedule(model.StatusWarming), nil)
				f.repo.EXPECT().TransitionStatus(gomock.Any(), "sch-1", model.StatusWarming, model.StatusCancelled).Return(true, nil)
				f.repo.EXPECT().SetResult(gomock.Any(), "sch-1", model.StatusCancelled, gomock.Any()).Return(nil)
			},
		},
		{
			name: "running goes through the engine",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storeSchedule(model.StatusRunning), nil)
			},
			wantEngineID: "sch-1",
		},
		{
			name: "running but unknown to the engine",
			setupMock: func(f *fixture) {
				f.canceller.ok = false
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storeSchedule(model.StatusRunning), nil)
			},
			wantErr: true,
		},
		{
			name: "completed schedule cannot be cancelled",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storeSchedule(model.StatusCompleted), nil)
			},
			wantErr: true,
		},
		{
			name: "unknown schedule",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.ReservationSchedule{}, nil)
			},
			wantErr: true,
		},
		{
			name: "concurrent transition loses the race",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storeSchedule(model.StatusPending), nil)
				f.repo.EXPECT().TransitionStatus(gomock.Any(), "sch-1", model.StatusPending, model.StatusCancelled).Return(false, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Cancel(context.Background(), "sch-1")

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)

			if tt.wantEngineID != "" {
				assert.Equal(t, []string{tt.wantEngineID}, f.canceller.called)
			}
		})
	}
}

func TestScheduleService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*fixture)
		wantErr   bool
	}{
		{
			name: "pending schedule deleted",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storeSchedule(model.StatusPending), nil)
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "terminal schedule deleted",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storeSchedule(model.StatusCompleted), nil)
				f.repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "warming schedule rejected",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storeSchedule(model.StatusWarming), nil)
			},
			wantErr: true,
		},
		{
			name: "running schedule rejected",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(storeSchedule(model.StatusRunning), nil)
			},
			wantErr: true,
		},
		{
			name: "unknown schedule",
			setupMock: func(f *fixture) {
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.ReservationSchedule{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			err := f.svc.Delete(context.Background(), "sch-1")

			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestScheduleService_Attempts(t *testing.T) {
	t.Run("returns attempt log", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().AttemptsBySchedule(gomock.Any(), "sch-1").Return([]model.AttemptResult{
			{ID: "att-1", ScheduleID: "sch-1", Outcome: model.OutcomeSuccess, AttemptOrdinal: 1},
			{ID: "att-2", ScheduleID: "sch-1", Outcome: model.OutcomeSoldOut, AttemptOrdinal: 2},
		}, nil)

		res, err := f.svc.Attempts(context.Background(), "sch-1")

		require.NoError(t, err)
		assert.Len(t, res.Attempts, 2)
	})

	t.Run("unknown schedule", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := f.svc.Attempts(context.Background(), "missing")

		assert.Error(t, err)
	})

	t.Run("repository failure", func(t *testing.T) {
		f := newFixture(t)

		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, errors.New("connection reset"))

		_, err := f.svc.Attempts(context.Background(), "sch-1")

		assert.Error(t, err)
	})
}
