package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"openrun/infras/jwt"
	"openrun/internal/domains/auth/model/dto"
	"openrun/shared/constant"
)

func TestRegisterRequest_ToOperatorModel(t *testing.T) {
	fullName := "Site Admin"
	req := dto.RegisterRequest{
		Username: "admin",
		Password: "plaintext",
		FullName: &fullName,
	}

	operator := req.ToOperatorModel("system", "hashed-password")

	assert.NotEmpty(t, operator.ID)
	assert.Equal(t, "admin", operator.Username)
	assert.Equal(t, "hashed-password", operator.Password)
	assert.Equal(t, constant.RoleOperator, operator.Role)
	assert.True(t, operator.Active)
	assert.Equal(t, "system", operator.CreatedBy)
}

func TestRegisterRequest_ToOperatorModel_ExplicitRole(t *testing.T) {
	req := dto.RegisterRequest{
		Username: "admin",
		Password: "plaintext",
		Role:     constant.RoleAdmin,
	}

	operator := req.ToOperatorModel("system", "hashed-password")

	assert.Equal(t, constant.RoleAdmin, operator.Role)
}

func TestLoginResponse_FromTokenPair(t *testing.T) {
	var res dto.LoginResponse
	res.FromTokenPair(&jwt.TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
	})

	assert.Equal(t, "access", res.AccessToken)
	assert.Equal(t, "refresh", res.RefreshToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
}
