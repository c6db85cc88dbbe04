package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"openrun/internal/domains/schedule/model"
	"openrun/shared"
	"openrun/shared/constant"
	gDto "openrun/shared/dto"
	gModel "openrun/shared/model"
	"openrun/shared/timezone"
)

const (
	defaultRetryIntervalSeconds = 60
	defaultWaveIntervalMS       = 50
)

type CreateScheduleRequest struct {
	CampingSiteID        string   `json:"camping_site_id"        validate:"required,uuid"`
	ExecuteAt            string   `json:"execute_at"             validate:"required,future"`
	TargetDate           string   `json:"target_date"            validate:"required,targetdate"`
	SeatIDs              []string `json:"seat_ids"               validate:"omitempty,dive,uuid"`
	AccountIDs           []string `json:"account_ids"            validate:"required,min=1,dive,uuid"`
	RetryCount           int      `json:"retry_count"            validate:"omitempty,gte=0,lte=20"`
	RetryIntervalSeconds int      `json:"retry_interval_seconds" validate:"omitempty,gte=1,lte=600"`
	WaveIntervalMS       int      `json:"wave_interval_ms"       validate:"omitempty,gte=10,lte=200"`
	BurstRetryCount      int      `json:"burst_retry_count"      validate:"omitempty,gte=0,lte=5"`
	PreFireMS            int      `json:"pre_fire_ms"            validate:"omitempty,gte=0,lte=2000"`
	SessionWarmupMinutes int      `json:"session_warmup_minutes" validate:"omitempty,gte=0,lte=60"`
	DryRun               bool     `json:"dry_run"`
}

func (c *CreateScheduleRequest) ToModel(user string) (model.ReservationSchedule, error) {
	executeAt, err := time.Parse(constant.DateFormat, c.ExecuteAt)
	if err != nil {
		return model.ReservationSchedule{}, err
	}

	retryInterval := c.RetryIntervalSeconds
	if retryInterval == 0 {
		retryInterval = defaultRetryIntervalSeconds
	}

	waveInterval := c.WaveIntervalMS
	if waveInterval == 0 {
		waveInterval = defaultWaveIntervalMS
	}

	return model.ReservationSchedule{
		ID:                   uuid.NewString(),
		CampingSiteID:        c.CampingSiteID,
		ExecuteAt:            executeAt,
		TargetDate:           c.TargetDate,
		SeatIDs:              c.SeatIDs,
		AccountIDs:           c.AccountIDs,
		RetryCount:           c.RetryCount,
		RetryIntervalSeconds: retryInterval,
		WaveIntervalMS:       waveInterval,
		BurstRetryCount:      c.BurstRetryCount,
		PreFireMS:            c.PreFireMS,
		SessionWarmupMinutes: c.SessionWarmupMinutes,
		DryRun:               c.DryRun,
		Status:               model.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type ScheduleResponse struct {
	ID                   string          `json:"id"`
	CampingSiteID        string          `json:"camping_site_id"`
	ExecuteAt            string          `json:"execute_at"`
	TargetDate           string          `json:"target_date"`
	SeatIDs              []string        `json:"seat_ids"`
	AccountIDs           []string        `json:"account_ids"`
	RetryCount           int             `json:"retry_count"`
	RetryIntervalSeconds int             `json:"retry_interval_seconds"`
	WaveIntervalMS       int             `json:"wave_interval_ms"`
	BurstRetryCount      int             `json:"burst_retry_count"`
	PreFireMS            int             `json:"pre_fire_ms"`
	SessionWarmupMinutes int             `json:"session_warmup_minutes"`
	DryRun               bool            `json:"dry_run"`
	Status               string          `json:"status"`
	Result               json.RawMessage `json:"result,omitempty"`
	gDto.Metadata
}

func (r *ScheduleResponse) FromModel(model model.ReservationSchedule) {
	r.ID = model.ID
	r.CampingSiteID = model.CampingSiteID
	r.ExecuteAt = model.ExecuteAt.Format(constant.DateFormat)
	r.TargetDate = model.TargetDate
	r.SeatIDs = model.SeatIDs
	r.AccountIDs = model.AccountIDs
	r.RetryCount = model.RetryCount
	r.RetryIntervalSeconds = model.RetryIntervalSeconds
	r.WaveIntervalMS = model.WaveIntervalMS
	r.BurstRetryCount = model.BurstRetryCount
	r.PreFireMS = model.PreFireMS
	r.SessionWarmupMinutes = model.SessionWarmupMinutes
	r.DryRun = model.DryRun
	r.Status = model.Status
	r.Result = json.RawMessage(model.Result)
	r.Metadata.FromModel(model.Metadata)
}

type GetSchedulesResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetSchedulesResponse) FromModels(models []model.ReservationSchedule, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Schedules = make([]ScheduleResponse, len(models))
	for i, mod := range models {
		r.Schedules[i].FromModel(mod)
	}
}

type AttemptResponse struct {
	ID                string `json:"id"`
	ScheduleID        string `json:"schedule_id"`
	AccountID         string `json:"account_id"`
	SeatProductCode   string `json:"seat_product_code"`
	Outcome           string `json:"outcome"`
	AttemptOrdinal    int    `json:"attempt_ordinal"`
	ReservationNumber string `json:"reservation_number,omitempty"`
	ErrorText         string `json:"error_text,omitempty"`
	DurationMS        int64  `json:"duration_ms"`
	AttemptedAt       string `json:"attempted_at"`
}

func (r *AttemptResponse) FromModel(model model.AttemptResult) {
	r.ID = model.ID
	r.ScheduleID = model.ScheduleID
	r.AccountID = model.AccountID
	r.SeatProductCode = model.SeatProductCode
	r.Outcome = model.Outcome
	r.AttemptOrdinal = model.AttemptOrdinal
	r.ReservationNumber = model.ReservationNumber
	r.ErrorText = model.ErrorText
	r.DurationMS = model.DurationMS
	r.AttemptedAt = model.AttemptedAt.Format(constant.DateFormat)
}

type GetAttemptsResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
}

func (r *GetAttemptsResponse) FromModels(models []model.AttemptResult) {
	r.Attempts = make([]AttemptResponse, len(models))
	for i, mod := range models {
		r.Attempts[i].FromModel(mod)
	}
}
