package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openrun/config"
	scheduleModel "openrun/internal/domains/schedule/model"
	"openrun/internal/engine"
)

func TestPolicyDelay(t *testing.T) {
	policy := engine.Policy{
		BurstRetryCount: 3,
		BurstBaseDelay:  50 * time.Millisecond,
		SlowRetryCount:  2,
		SlowInterval:    60 * time.Second,
		CooldownFactor:  2,
	}

	t.Run("BurstDoubles", func(t *testing.T) {
		expected := []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}

		for retry, want := range expected {
			delay, ok := policy.Delay(retry)
			require.True(t, ok)
			assert.Equal(t, want, delay)
		}
	})

	t.Run("SlowPhaseFlat", func(t *testing.T) {
		for retry := 3; retry < 5; retry++ {
			delay, ok := policy.Delay(retry)
			require.True(t, ok)
			assert.Equal(t, 60*time.Second, delay)
		}
	})

	t.Run("BudgetExhausted", func(t *testing.T) {
		_, ok := policy.Delay(5)
		assert.False(t, ok)
		assert.Equal(t, 5, policy.MaxRetries())
	})

	t.Run("NonDecreasing", func(t *testing.T) {
		previous := time.Duration(0)
		for retry := 0; ; retry++ {
			delay, ok := policy.Delay(retry)
			if !ok {
				break
			}

			assert.GreaterOrEqual(t, delay, previous)
			previous = delay
		}
	})

	t.Run("CooldownStretchesSlowPhase", func(t *testing.T) {
		delay, ok := policy.Delay(3)
		require.True(t, ok)

		assert.Equal(t, 120*time.Second, policy.Cooldown(3, delay))
	})

	t.Run("CooldownLeavesBurstUntouched", func(t *testing.T) {
		for retry := 0; retry < policy.BurstRetryCount; retry++ {
			delay, ok := policy.Delay(retry)
			require.True(t, ok)

			assert.Equal(t, delay, policy.Cooldown(retry, delay))
		}
	})
}

func TestNewPolicy(t *testing.T) {
	schedule := &scheduleModel.ReservationSchedule{
		BurstRetryCount:      2,
		RetryCount:           10,
		RetryIntervalSeconds: 30,
	}

	t.Run("DefaultsApplied", func(t *testing.T) {
		policy := engine.NewPolicy(schedule, &config.Config{})

		assert.Equal(t, 50*time.Millisecond, policy.BurstBaseDelay)
		assert.Equal(t, 2, policy.CooldownFactor)
		assert.Equal(t, 30*time.Second, policy.SlowInterval)
	})

	t.Run("ConfigOverrides", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Engine.BurstBaseDelayMS = 25
		cfg.Engine.RateLimitCooldownFactor = 3

		policy := engine.NewPolicy(schedule, cfg)

		assert.Equal(t, 25*time.Millisecond, policy.BurstBaseDelay)
		assert.Equal(t, 3, policy.CooldownFactor)
	})
}

func TestFireInstant(t *testing.T) {
	executeAt := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("ServerAhead", func(t *testing.T) {
		// server clock 2s ahead: fire 2s earlier locally, plus pre-fire
		fireAt := engine.FireInstant(executeAt, 2*time.Second, 150)

		assert.Equal(t, executeAt.Add(-2*time.Second).Add(-150*time.Millisecond), fireAt)
	})

	t.Run("ServerBehind", func(t *testing.T) {
		fireAt := engine.FireInstant(executeAt, -500*time.Millisecond, 0)

		assert.Equal(t, executeAt.Add(500*time.Millisecond), fireAt)
	})
}
