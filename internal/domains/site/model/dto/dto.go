package dto

import (
	"github.com/google/uuid"

	"openrun/internal/domains/site/model"
	"openrun/shared"
	gDto "openrun/shared/dto"
	gModel "openrun/shared/model"
	"openrun/shared/timezone"
)

type CreateSiteRequest struct {
	Name       string `json:"name"        validate:"required,max=100"`
	SiteType   string `json:"site_type"   validate:"required,oneof=xticket"`
	BaseURL    string `json:"base_url"    validate:"required,url,max=255"`
	ShopCode   string `json:"shop_code"   validate:"required,max=50"`
	ShopEncode string `json:"shop_encode" validate:"omitempty,max=255"`
}

func (c *CreateSiteRequest) ToModel(user string) model.CampingSite {
	return model.CampingSite{
		ID:         uuid.NewString(),
		Name:       c.Name,
		SiteType:   c.SiteType,
		BaseURL:    c.BaseURL,
		ShopCode:   c.ShopCode,
		ShopEncode: c.ShopEncode,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateSiteRequest struct {
	Name       string `db:"name"        json:"name"        validate:"omitempty,max=100"`
	BaseURL    string `db:"base_url"    json:"base_url"    validate:"omitempty,url,max=255"`
	ShopCode   string `db:"shop_code"   json:"shop_code"   validate:"omitempty,max=50"`
	ShopEncode string `db:"shop_encode" json:"shop_encode" validate:"omitempty,max=255"`
}

type SiteResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SiteType   string `json:"site_type"`
	BaseURL    string `json:"base_url"`
	ShopCode   string `json:"shop_code"`
	ShopEncode string `json:"shop_encode"`
	gDto.Metadata
}

func (r *SiteResponse) FromModel(model model.CampingSite) {
	r.ID = model.ID
	r.Name = model.Name
	r.SiteType = model.SiteType
	r.BaseURL = model.BaseURL
	r.ShopCode = model.ShopCode
	r.ShopEncode = model.ShopEncode
	r.Metadata.FromModel(model.Metadata)
}

type GetSitesResponse struct {
	Sites     []SiteResponse `json:"sites"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetSitesResponse) FromModels(models []model.CampingSite, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Sites = make([]SiteResponse, len(models))
	for i, mod := range models {
		r.Sites[i].FromModel(mod)
	}
}
