package dto

import (
	"github.com/google/uuid"

	"openrun/internal/domains/seat/model"
	"openrun/shared"
	gDto "openrun/shared/dto"
	gModel "openrun/shared/model"
	"openrun/shared/timezone"
)

type CreateSeatRequest struct {
	CampingSiteID string `json:"camping_site_id" validate:"required,uuid"`
	ProductCode   string `json:"product_code"    validate:"required,notblank,max=50"`
	Category      string `json:"category"        validate:"omitempty,max=50"`
	Name          string `json:"name"            validate:"required,max=100"`
	SortOrder     int    `json:"sort_order"      validate:"omitempty,gte=0"`
}

func (c *CreateSeatRequest) ToModel(user string) model.Seat {
	return model.Seat{
		ID:            uuid.NewString(),
		CampingSiteID: c.CampingSiteID,
		ProductCode:   c.ProductCode,
		Category:      c.Category,
		Name:          c.Name,
		SortOrder:     c.SortOrder,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateSeatRequest struct {
	Category  string `db:"category"   json:"category"   validate:"omitempty,max=50"`
	Name      string `db:"name"       json:"name"       validate:"omitempty,max=100"`
	SortOrder int    `db:"sort_order" json:"sort_order" validate:"omitempty,gte=0"`
}

type SeatResponse struct {
	ID            string `json:"id"`
	CampingSiteID string `json:"camping_site_id"`
	ProductCode   string `json:"product_code"`
	Category      string `json:"category"`
	Name          string `json:"name"`
	SortOrder     int    `json:"sort_order"`
	gDto.Metadata
}

func (r *SeatResponse) FromModel(model model.Seat) {
	r.ID = model.ID
	r.CampingSiteID = model.CampingSiteID
	r.ProductCode = model.ProductCode
	r.Category = model.Category
	r.Name = model.Name
	r.SortOrder = model.SortOrder
	r.Metadata.FromModel(model.Metadata)
}

type GetSeatsResponse struct {
	Seats     []SeatResponse `json:"seats"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetSeatsResponse) FromModels(models []model.Seat, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Seats = make([]SeatResponse, len(models))
	for i, mod := range models {
		r.Seats[i].FromModel(mod)
	}
}
