package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"openrun/shared/model"
)

const (
	TableName  = "reservation_schedules"
	EntityName = "schedule"

	FieldID                   = "id"
	FieldCampingSiteID        = "camping_site_id"
	FieldExecuteAt            = "execute_at"
	FieldTargetDate           = "target_date"
	FieldSeatIDs              = "seat_ids"
	FieldAccountIDs           = "account_ids"
	FieldRetryCount           = "retry_count"
	FieldRetryIntervalSeconds = "retry_interval_seconds"
	FieldWaveIntervalMS       = "wave_interval_ms"
	FieldBurstRetryCount      = "burst_retry_count"
	FieldPreFireMS            = "pre_fire_ms"
	FieldSessionWarmupMinutes = "session_warmup_minutes"
	FieldDryRun               = "dry_run"
	FieldStatus               = "status"
	FieldResult               = "result"
)

const (
	AttemptTableName  = "attempt_results"
	AttemptEntityName = "attempt"

	AttemptFieldID                = "id"
	AttemptFieldScheduleID        = "schedule_id"
	AttemptFieldAccountID         = "account_id"
	AttemptFieldSeatProductCode   = "seat_product_code"
	AttemptFieldOutcome           = "outcome"
	AttemptFieldOrdinal           = "attempt_ordinal"
	AttemptFieldReservationNumber = "reservation_number"
	AttemptFieldErrorText         = "error_text"
	AttemptFieldDurationMS        = "duration_ms"
	AttemptFieldAttemptedAt       = "attempted_at"
)

// Schedule lifecycle states.
const (
	StatusPending   = "pending"
	StatusWarming   = "warming"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Attempt outcome kinds.
const (
	OutcomeSuccess           = "success"
	OutcomeSoldOut           = "sold_out"
	OutcomeInvalidCredential = "invalid_credential"
	OutcomeRateLimited       = "rate_limited"
	OutcomeNetworkError      = "network_error"
	OutcomeCaptchaRequired   = "captcha_required"
	OutcomeWouldAttempt      = "would_attempt"
	// OutcomeSurplusSuccess marks a booking that landed after a sibling had
	// already won. The reservation is real and needs operator follow-up; it
	// must never collide with the winner's unique success row.
	OutcomeSurplusSuccess = "surplus_success"
)

var transitions = map[string][]string{
	StatusPending: {StatusWarming, StatusRunning, StatusCancelled},
	StatusWarming: {StatusRunning, StatusFailed, StatusCancelled},
	StatusRunning: {StatusCompleted, StatusFailed, StatusCancelled},
}

// CanTransition reports whether moving from one lifecycle state to another
// is allowed. Terminal states allow no outgoing transitions.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// IsTerminal reports whether the state admits no further transitions.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed || status == StatusCancelled
}

type ReservationSchedule struct {
	ID                   string         `db:"id"`
	CampingSiteID        string         `db:"camping_site_id"`
	ExecuteAt            time.Time      `db:"execute_at"`
	TargetDate           string         `db:"target_date"`
	SeatIDs              pq.StringArray `db:"seat_ids"`
	AccountIDs           pq.StringArray `db:"account_ids"`
	RetryCount           int            `db:"retry_count"`
	RetryIntervalSeconds int            `db:"retry_interval_seconds"`
	WaveIntervalMS       int            `db:"wave_interval_ms"`
	BurstRetryCount      int            `db:"burst_retry_count"`
	PreFireMS            int            `db:"pre_fire_ms"`
	SessionWarmupMinutes int            `db:"session_warmup_minutes"`
	DryRun               bool           `db:"dry_run"`
	Status               string         `db:"status"`
	Result               types.JSONText `db:"result"`
	model.Metadata
}

// AttemptResult is one row of the append-only attempt log.
type AttemptResult struct {
	ID                string    `db:"id"`
	ScheduleID        string    `db:"schedule_id"`
	AccountID         string    `db:"account_id"`
	SeatProductCode   string    `db:"seat_product_code"`
	Outcome           string    `db:"outcome"`
	AttemptOrdinal    int       `db:"attempt_ordinal"`
	ReservationNumber string    `db:"reservation_number"`
	ErrorText         string    `db:"error_text"`
	DurationMS        int64     `db:"duration_ms"`
	AttemptedAt       time.Time `db:"attempted_at"`
}

// ResultSummary is persisted as the schedule's result JSON once the run
// reaches a terminal state.
type ResultSummary struct {
	Outcome           string   `json:"outcome"`
	WinnerAccountID   string   `json:"winner_account_id,omitempty"`
	SeatProductCode   string   `json:"seat_product_code,omitempty"`
	ReservationNumber string   `json:"reservation_number,omitempty"`
	TotalAttempts     int      `json:"total_attempts"`
	SurplusAccountIDs []string `json:"surplus_account_ids,omitempty"`
	Reason            string   `json:"reason,omitempty"`
}
