package engine

import (
	"time"

	"openrun/config"
	scheduleModel "openrun/internal/domains/schedule/model"
)

const (
	defaultBurstBaseDelayMS        = 50
	defaultRateLimitCooldownFactor = 2
)

// Policy decides how long a worker waits between attempts on one seat. The
// chain starts with a short doubling burst and settles into slow retries.
type Policy struct {
	BurstRetryCount int
	BurstBaseDelay  time.Duration
	SlowRetryCount  int
	SlowInterval    time.Duration
	CooldownFactor  int
}

// Delay returns the wait before retry number `retry` (zero-based) and whether
// the retry budget still allows it.
func (p Policy) Delay(retry int) (time.Duration, bool) {
	if retry < 0 {
		return 0, false
	}

	if retry < p.BurstRetryCount {
		return p.BurstBaseDelay << retry, true
	}

	if retry < p.BurstRetryCount+p.SlowRetryCount {
		return p.SlowInterval, true
	}

	return 0, false
}

// Cooldown stretches the delay before retry number `retry` after a
// rate-limited outcome. Only slow-phase delays stretch; the burst keeps its
// shape so the opening salvo is not slowed by a transient throttle.
func (p Policy) Cooldown(retry int, delay time.Duration) time.Duration {
	if retry < p.BurstRetryCount {
		return delay
	}

	return delay * time.Duration(p.CooldownFactor)
}

// MaxRetries is the total retry budget per seat chain.
func (p Policy) MaxRetries() int {
	return p.BurstRetryCount + p.SlowRetryCount
}

// NewPolicy folds per-schedule knobs and process-wide defaults into a Policy.
func NewPolicy(schedule *scheduleModel.ReservationSchedule, conf *config.Config) Policy {
	baseDelayMS := conf.Engine.BurstBaseDelayMS
	if baseDelayMS <= 0 {
		baseDelayMS = defaultBurstBaseDelayMS
	}

	cooldownFactor := conf.Engine.RateLimitCooldownFactor
	if cooldownFactor <= 0 {
		cooldownFactor = defaultRateLimitCooldownFactor
	}

	return Policy{
		BurstRetryCount: schedule.BurstRetryCount,
		BurstBaseDelay:  time.Duration(baseDelayMS) * time.Millisecond,
		SlowRetryCount:  schedule.RetryCount,
		SlowInterval:    time.Duration(schedule.RetryIntervalSeconds) * time.Second,
		CooldownFactor:  cooldownFactor,
	}
}
