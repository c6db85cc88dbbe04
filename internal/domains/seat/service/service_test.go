package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"openrun/config"
	"openrun/infras/otel/mocks"
	seatMocks "openrun/internal/domains/seat/mocks"
	"openrun/internal/domains/seat/model"
	"openrun/internal/domains/seat/model/dto"
	"openrun/internal/domains/seat/service"
	siteMocks "openrun/internal/domains/site/mocks"
	cacheMocks "openrun/shared/cache/mocks"
)

func newService(t *testing.T) (service.Seat, *seatMocks.MockSeat, *siteMocks.MockSite, *cacheMocks.MockRedisCache) {
	ctrl := gomock.NewController(t)

	repo := seatMocks.NewMockSeat(ctrl)
	siteRepo := siteMocks.NewMockSite(ctrl)
	cache := cacheMocks.NewMockRedisCache(ctrl)

	// cache writes and invalidation run on detached goroutines
	cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(repo, siteRepo, &config.Config{}, cache, mocks.NewOtel())

	return svc, repo, siteRepo, cache
}

func validCreateRequest() dto.CreateSeatRequest {
	return dto.CreateSeatRequest{
		CampingSiteID: "site-1",
		ProductCode:   "00040009",
		Category:      "auto-camping",
		Name:          "A-9",
	}
}

func TestSeatService_Create(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		svc, repo, siteRepo, _ := newService(t)

		siteRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, seat model.Seat) error {
				assert.Equal(t, "00040009", seat.ProductCode)
				assert.NotEmpty(t, seat.ID)

				return nil
			})

		assert.NoError(t, svc.Create(context.Background(), validCreateRequest()))
	})

	t.Run("unknown camping site", func(t *testing.T) {
		svc, _, siteRepo, _ := newService(t)

		siteRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		assert.Error(t, svc.Create(context.Background(), validCreateRequest()))
	})

	t.Run("duplicate product code for the site", func(t *testing.T) {
		svc, repo, siteRepo, _ := newService(t)

		siteRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		assert.Error(t, svc.Create(context.Background(), validCreateRequest()))
	})
}

func TestSeatService_Get(t *testing.T) {
	t.Run("reads through on cache miss", func(t *testing.T) {
		svc, repo, _, cache := newService(t)

		cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache: key not found"))
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Seat{ID: "seat-1", Name: "A-9", ProductCode: "00040009"}, nil)

		res, err := svc.Get(context.Background(), "seat-1")

		require.NoError(t, err)
		assert.Equal(t, "A-9", res.Name)
	})

	t.Run("unknown seat", func(t *testing.T) {
		svc, repo, _, cache := newService(t)

		cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache: key not found"))
		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Seat{}, nil)

		_, err := svc.Get(context.Background(), "missing")

		assert.Error(t, err)
	})
}

func TestSeatService_Update(t *testing.T) {
	t.Run("empty request rejected", func(t *testing.T) {
		svc, _, _, _ := newService(t)

		assert.Error(t, svc.Update(context.Background(), dto.UpdateSeatRequest{}, "seat-1"))
	})

	t.Run("successful update", func(t *testing.T) {
		svc, repo, _, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		assert.NoError(t, svc.Update(context.Background(), dto.UpdateSeatRequest{Name: "A-10"}, "seat-1"))
	})
}

func TestSeatService_Delete(t *testing.T) {
	t.Run("unknown seat", func(t *testing.T) {
		svc, repo, _, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		assert.Error(t, svc.Delete(context.Background(), "missing"))
	})

	t.Run("successful delete", func(t *testing.T) {
		svc, repo, _, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		assert.NoError(t, svc.Delete(context.Background(), "seat-1"))
	})
}
