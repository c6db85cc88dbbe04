package model

import (
	"openrun/shared/model"
)

const (
	TableName  = "seats"
	EntityName = "seat"

	FieldID            = "id"
	FieldCampingSiteID = "camping_site_id"
	FieldProductCode   = "product_code"
	FieldCategory      = "category"
	FieldName          = "name"
	FieldSortOrder     = "sort_order"
)

// Seat is a bookable unit of a camping site. ProductCode is the remote
// system's identifier and is unique within a site; SortOrder drives the
// default priority when a schedule lists no explicit seats.
type Seat struct {
	ID            string `db:"id"`
	CampingSiteID string `db:"camping_site_id"`
	ProductCode   string `db:"product_code"`
	Category      string `db:"category"`
	Name          string `db:"name"`
	SortOrder     int    `db:"sort_order"`
	model.Metadata
}
