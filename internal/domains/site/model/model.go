package model

import (
	"openrun/shared/model"
)

const (
	TableName  = "camping_sites"
	EntityName = "site"

	FieldID         = "id"
	FieldName       = "name"
	FieldSiteType   = "site_type"
	FieldBaseURL    = "base_url"
	FieldShopCode   = "shop_code"
	FieldShopEncode = "shop_encode"
)

// Supported remote reservation systems.
const (
	SiteTypeXTicket = "xticket"
)

type CampingSite struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	SiteType   string `db:"site_type"`
	BaseURL    string `db:"base_url"`
	ShopCode   string `db:"shop_code"`
	ShopEncode string `db:"shop_encode"`
	model.Metadata
}
