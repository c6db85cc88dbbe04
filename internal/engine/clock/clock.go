// Package clock estimates the offset between the local clock and a remote
// reservation server's clock. Fire instants are computed on the server's
// timeline, so the whole engine leans on this estimate.
package clock

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"openrun/config"
	"openrun/infras/otel"
	"openrun/internal/adapter"
	"openrun/shared/constant"
)

type Confidence string

const (
	// ConfidenceNone means no usable sample was collected.
	ConfidenceNone Confidence = "none"
	// ConfidenceGood means the median round trip sat under the threshold.
	ConfidenceGood Confidence = "good"
	// ConfidenceDegraded means the offset is usable but the round trips were
	// slow enough that sub-100ms precision should not be trusted.
	ConfidenceDegraded Confidence = "degraded"
)

const (
	defaultSampleCount    = 5
	defaultSampleGapMS    = 100
	defaultRTTThresholdMS = 500

	// deviations under this floor are jitter, not outliers
	tightClusterFloor = 5 * time.Millisecond

	otelAttrOffsetMS  = "offset_ms"
	otelAttrRTTMS     = "rtt_ms"
	otelAttrSamples   = "samples"
	otelAttrConfLevel = "confidence"
)

type Estimate struct {
	Offset     time.Duration
	RTT        time.Duration
	Samples    int
	Confidence Confidence
	SampledAt  time.Time
}

type sample struct {
	offset time.Duration
	rtt    time.Duration
}

type Synchronizer interface {
	// Measure collects fresh samples and replaces the cached estimate.
	Measure(ctx context.Context) (Estimate, error)
	Current() Estimate
	Offset() time.Duration
	// ServerNow maps the local clock onto the server's timeline.
	ServerNow() time.Time
	// Run re-measures periodically until the context is cancelled.
	Run(ctx context.Context)
}

type synchronizer struct {
	client adapter.Client
	config *config.Config
	otel   otel.Otel

	mu       sync.RWMutex
	estimate Estimate
}

func (s *synchronizer) Measure(ctx context.Context) (est Estimate, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelEngineScopeName, constant.OtelEngineScopeName+".ClockMeasure")
	defer scope.End()
	defer scope.TraceIfError(err)

	sampleCount := s.config.Engine.ClockSampleCount
	if sampleCount <= 0 {
		sampleCount = defaultSampleCount
	}

	gapMS := s.config.Engine.ClockSampleGapMS
	if gapMS <= 0 {
		gapMS = defaultSampleGapMS
	}
	gap := time.Duration(gapMS) * time.Millisecond

	samples := make([]sample, 0, sampleCount)
	for i := 0; i < sampleCount; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return Estimate{Confidence: ConfidenceNone}, ctx.Err()
			case <-time.After(gap):
			}
		}

		t0 := time.Now()
		serverTime, sampleErr := s.client.ServerTime(ctx)
		t1 := time.Now()

		if sampleErr != nil {
			log.Warn().Err(sampleErr).Int("sample", i).Msg("[ClockMeasure] sample failed")

			continue
		}

		rtt := t1.Sub(t0)
		samples = append(samples, sample{
			// the server timestamp was produced roughly halfway through
			// the round trip
			offset: serverTime.Sub(t0) - rtt/2,
			rtt:    rtt,
		})
	}

	if len(samples) == 0 {
		est = Estimate{Confidence: ConfidenceNone, SampledAt: time.Now()}
		s.store(est)

		return est, errors.New("no usable clock samples")
	}

	kept := filterOutliers(samples)

	thresholdMS := s.config.Engine.ClockRTTThresholdMS
	if thresholdMS <= 0 {
		thresholdMS = defaultRTTThresholdMS
	}

	medianRTT := medianDuration(kept, func(s sample) time.Duration { return s.rtt })

	confidence := ConfidenceGood
	if medianRTT > time.Duration(thresholdMS)*time.Millisecond {
		confidence = ConfidenceDegraded
	}

	est = Estimate{
		Offset:     medianDuration(kept, func(s sample) time.Duration { return s.offset }),
		RTT:        medianRTT,
		Samples:    len(kept),
		Confidence: confidence,
		SampledAt:  time.Now(),
	}
	s.store(est)

	scope.SetAttributes(map[string]any{
		otelAttrOffsetMS:  int(est.Offset.Milliseconds()),
		otelAttrRTTMS:     int(est.RTT.Milliseconds()),
		otelAttrSamples:   est.Samples,
		otelAttrConfLevel: string(est.Confidence),
	})

	return est, nil
}

func (s *synchronizer) Current() Estimate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.estimate
}

func (s *synchronizer) Offset() time.Duration {
	return s.Current().Offset
}

func (s *synchronizer) ServerNow() time.Time {
	return time.Now().Add(s.Offset())
}

func (s *synchronizer) Run(ctx context.Context) {
	resyncSeconds := s.config.Engine.ClockResyncSeconds
	if resyncSeconds <= 0 {
		resyncSeconds = 30
	}

	ticker := time.NewTicker(time.Duration(resyncSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Measure(ctx); err != nil {
				log.Warn().Err(err).Msg("[ClockRun] resync failed, keeping previous estimate")
			}
		}
	}
}

func (s *synchronizer) store(est Estimate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a failed measurement never clobbers a usable estimate
	if est.Confidence == ConfidenceNone && s.estimate.Confidence != Confidence("") && s.estimate.Confidence != ConfidenceNone {
		return
	}

	s.estimate = est
}

// filterOutliers drops samples whose round trip or offset sits more than two
// standard deviations away from the respective median. If filtering would
// drop everything, the original set is kept.
func filterOutliers(samples []sample) []sample {
	kept := filterBy(samples, func(s sample) time.Duration { return s.rtt })
	kept = filterBy(kept, func(s sample) time.Duration { return s.offset })

	if len(kept) == 0 {
		return samples
	}

	return kept
}

func filterBy(samples []sample, value func(sample) time.Duration) []sample {
	if len(samples) < 3 {
		return samples
	}

	median := medianDuration(samples, value)

	var maxDeviation time.Duration
	for _, s := range samples {
		deviation := value(s) - median
		if deviation < 0 {
			deviation = -deviation
		}
		if deviation > maxDeviation {
			maxDeviation = deviation
		}
	}

	// a tight cluster has no outliers to drop; without the floor the 2-sigma
	// cut discards samples over sub-millisecond jitter
	if maxDeviation <= tightClusterFloor {
		return samples
	}

	sigma := stddev(samples, value)
	if sigma == 0 {
		return samples
	}

	kept := make([]sample, 0, len(samples))
	for _, s := range samples {
		deviation := value(s) - median
		if deviation < 0 {
			deviation = -deviation
		}
		if float64(deviation) <= 2*sigma {
			kept = append(kept, s)
		}
	}

	return kept
}

func medianDuration(samples []sample, value func(sample) time.Duration) time.Duration {
	values := make([]time.Duration, len(samples))
	for i, s := range samples {
		values[i] = value(s)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}

	return values[mid]
}

func stddev(samples []sample, value func(sample) time.Duration) float64 {
	var sum float64
	for _, s := range samples {
		sum += float64(value(s))
	}
	mean := sum / float64(len(samples))

	var variance float64
	for _, s := range samples {
		d := float64(value(s)) - mean
		variance += d * d
	}
	variance /= float64(len(samples))

	return math.Sqrt(variance)
}

// New builds a Synchronizer bound to one site's adapter client.
func New(client adapter.Client, conf *config.Config, o otel.Otel) Synchronizer {
	return &synchronizer{
		client: client,
		config: conf,
		otel:   o,
	}
}
