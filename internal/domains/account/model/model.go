package model

import (
	"openrun/shared/model"
)

const (
	TableName  = "accounts"
	EntityName = "account"

	FieldID            = "id"
	FieldCampingSiteID = "camping_site_id"
	FieldUsername      = "username"
	FieldPassword      = "password"
	FieldBookerName    = "booker_name"
	FieldBookerPhone   = "booker_phone"
	FieldCarNumber     = "car_number"
	FieldNickname      = "nickname"
	FieldPriority      = "priority"
	FieldIsActive      = "is_active"
)

// Account holds the remote-site credentials and booker details used when a
// reservation is submitted. Priority orders accounts within a wave; lower
// fires first. Inactive accounts never join a wave.
type Account struct {
	ID            string `db:"id"`
	CampingSiteID string `db:"camping_site_id"`
	Username      string `db:"username"`
	Password      string `db:"password"`
	BookerName    string `db:"booker_name"`
	BookerPhone   string `db:"booker_phone"`
	CarNumber     string `db:"car_number"`
	Nickname      string `db:"nickname"`
	Priority      int    `db:"priority"`
	IsActive      bool   `db:"is_active"`
	model.Metadata
}
