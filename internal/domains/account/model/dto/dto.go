package dto

import (
	"github.com/google/uuid"

	"openrun/internal/domains/account/model"
	"openrun/shared"
	gDto "openrun/shared/dto"
	gModel "openrun/shared/model"
	"openrun/shared/timezone"
)

type CreateAccountRequest struct {
	CampingSiteID string `json:"camping_site_id" validate:"required,uuid"`
	Username      string `json:"username"        validate:"required,notblank,max=100"`
	Password      string `json:"password"        validate:"required,min=1,max=100"`
	BookerName    string `json:"booker_name"     validate:"required,max=100"`
	BookerPhone   string `json:"booker_phone"    validate:"required,max=20"`
	CarNumber     string `json:"car_number"      validate:"omitempty,max=20"`
	Nickname      string `json:"nickname"        validate:"omitempty,max=50"`
	Priority      int    `json:"priority"        validate:"omitempty,gte=0"`
}

func (c *CreateAccountRequest) ToModel(user string) model.Account {
	return model.Account{
		ID:            uuid.NewString(),
		CampingSiteID: c.CampingSiteID,
		Username:      c.Username,
		Password:      c.Password,
		BookerName:    c.BookerName,
		BookerPhone:   c.BookerPhone,
		CarNumber:     c.CarNumber,
		Nickname:      c.Nickname,
		Priority:      c.Priority,
		IsActive:      true,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateAccountRequest struct {
	Password    string `db:"password"     json:"password"     validate:"omitempty,min=1,max=100"`
	BookerName  string `db:"booker_name"  json:"booker_name"  validate:"omitempty,max=100"`
	BookerPhone string `db:"booker_phone" json:"booker_phone" validate:"omitempty,max=20"`
	CarNumber   string `db:"car_number"   json:"car_number"   validate:"omitempty,max=20"`
	Nickname    string `db:"nickname"     json:"nickname"     validate:"omitempty,max=50"`
	Priority    int    `db:"priority"     json:"priority"     validate:"omitempty,gte=0"`
}

// AccountResponse never carries the stored password.
type AccountResponse struct {
	ID            string `json:"id"`
	CampingSiteID string `json:"camping_site_id"`
	Username      string `json:"username"`
	BookerName    string `json:"booker_name"`
	BookerPhone   string `json:"booker_phone"`
	CarNumber     string `json:"car_number"`
	Nickname      string `json:"nickname"`
	Priority      int    `json:"priority"`
	IsActive      bool   `json:"is_active"`
	gDto.Metadata
}

func (r *AccountResponse) FromModel(model model.Account) {
	r.ID = model.ID
	r.CampingSiteID = model.CampingSiteID
	r.Username = model.Username
	r.BookerName = model.BookerName
	r.BookerPhone = model.BookerPhone
	r.CarNumber = model.CarNumber
	r.Nickname = model.Nickname
	r.Priority = model.Priority
	r.IsActive = model.IsActive
	r.Metadata.FromModel(model.Metadata)
}

type GetAccountsResponse struct {
	Accounts  []AccountResponse `json:"accounts"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetAccountsResponse) FromModels(models []model.Account, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Accounts = make([]AccountResponse, len(models))
	for i, mod := range models {
		r.Accounts[i].FromModel(mod)
	}
}
