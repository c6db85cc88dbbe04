package model

import "openrun/shared/model"

const (
	TableName  = "operators"
	EntityName = "operator"

	FieldID        = "id"
	FieldUsername  = "username"
	FieldPassword  = "password"
	FieldFullName  = "full_name"
	FieldRole      = "role"
	FieldLastLogin = "last_login"
	FieldActive    = "active"
)

// Operator is a human who administers schedules through the API. Not to be
// confused with Account, which holds remote-site booking credentials.
type Operator struct {
	ID        string  `db:"id"`
	Username  string  `db:"username"`
	Password  string  `db:"password"`
	FullName  *string `db:"full_name"`
	Role      string  `db:"role"`
	LastLogin *string `db:"last_login"`
	Active    bool    `db:"active"`
	model.Metadata
}
