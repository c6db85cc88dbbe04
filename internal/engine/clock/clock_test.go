package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"openrun/config"
	"openrun/infras/otel/mocks"
	adapterMocks "openrun/internal/adapter/mocks"
	"openrun/internal/engine/clock"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Engine.ClockSampleCount = 5
	cfg.Engine.ClockSampleGapMS = 1
	cfg.Engine.ClockRTTThresholdMS = 500

	return cfg
}

func TestMeasure(t *testing.T) {
	t.Run("MedianOffset", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		client.EXPECT().ServerTime(gomock.Any()).DoAndReturn(func(context.Context) (time.Time, error) {
			return time.Now().Add(2 * time.Second), nil
		}).Times(5)

		sync := clock.New(client, testConfig(), mocks.NewOtel())

		est, err := sync.Measure(context.Background())

		require.NoError(t, err)
		assert.Equal(t, clock.ConfidenceGood, est.Confidence)
		assert.Equal(t, 5, est.Samples)
		assert.InDelta(t, 2*time.Second, est.Offset, float64(500*time.Millisecond))
	})

	t.Run("OutlierDiscarded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		calls := 0
		client.EXPECT().ServerTime(gomock.Any()).DoAndReturn(func(context.Context) (time.Time, error) {
			calls++
			if calls == 3 {
				// one sample with a wildly slow round trip and a bogus offset
				time.Sleep(80 * time.Millisecond)

				return time.Now().Add(10 * time.Second), nil
			}

			return time.Now(), nil
		}).Times(5)

		sync := clock.New(client, testConfig(), mocks.NewOtel())

		est, err := sync.Measure(context.Background())

		require.NoError(t, err)
		assert.Less(t, est.Samples, 5)
		assert.Less(t, est.Offset, time.Second)
	})

	t.Run("DegradedOnSlowRoundTrips", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		client.EXPECT().ServerTime(gomock.Any()).DoAndReturn(func(context.Context) (time.Time, error) {
			time.Sleep(15 * time.Millisecond)

			return time.Now(), nil
		}).Times(3)

		cfg := testConfig()
		cfg.Engine.ClockSampleCount = 3
		cfg.Engine.ClockRTTThresholdMS = 10

		sync := clock.New(client, cfg, mocks.NewOtel())

		est, err := sync.Measure(context.Background())

		require.NoError(t, err)
		assert.Equal(t, clock.ConfidenceDegraded, est.Confidence)
	})

	t.Run("AllSamplesFail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		client.EXPECT().ServerTime(gomock.Any()).Return(time.Time{}, errors.New("connection refused")).Times(5)

		sync := clock.New(client, testConfig(), mocks.NewOtel())

		est, err := sync.Measure(context.Background())

		assert.Error(t, err)
		assert.Equal(t, clock.ConfidenceNone, est.Confidence)
	})

	t.Run("FailedResyncKeepsPreviousEstimate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := adapterMocks.NewMockClient(ctrl)

		gomock.InOrder(
			client.EXPECT().ServerTime(gomock.Any()).DoAndReturn(func(context.Context) (time.Time, error) {
				return time.Now().Add(3 * time.Second), nil
			}).Times(5),
			client.EXPECT().ServerTime(gomock.Any()).Return(time.Time{}, errors.New("connection refused")).Times(5),
		)

		sync := clock.New(client, testConfig(), mocks.NewOtel())

		_, err := sync.Measure(context.Background())
		require.NoError(t, err)

		_, err = sync.Measure(context.Background())
		require.Error(t, err)

		assert.InDelta(t, 3*time.Second, sync.Current().Offset, float64(500*time.Millisecond))
		assert.NotEqual(t, clock.ConfidenceNone, sync.Current().Confidence)
	})
}

func TestServerNow(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := adapterMocks.NewMockClient(ctrl)

	client.EXPECT().ServerTime(gomock.Any()).DoAndReturn(func(context.Context) (time.Time, error) {
		return time.Now().Add(90 * time.Second), nil
	}).Times(5)

	sync := clock.New(client, testConfig(), mocks.NewOtel())

	_, err := sync.Measure(context.Background())
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().Add(90*time.Second), sync.ServerNow(), 2*time.Second)
}
