package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-warehouse-ms/internal/model"
)

type createUserInput struct {
	Username string     `validate:"required,max=50"`
	Email    string     `validate:"required,email"`
	Role     model.Role `validate:"required,role"`
}

type statusInput struct {
	Status string `validate:"required,order_status"`
}

func TestValidateStructAcceptsValidInput(t *testing.T) {
	errs := ValidateStruct(createUserInput{Username: "ana", Email: "ana@example.com", Role: model.RoleStaff})
	assert.Empty(t, errs)
}

func TestValidateStructReportsFailedFields(t *testing.T) {
	errs := ValidateStruct(createUserInput{Username: "ana", Email: "not-an-email", Role: "owner"})
	require.Len(t, errs, 2)
	assert.Equal(t, "createUserInput.Email", errs[0].FailedField)
	assert.Equal(t, "email", errs[0].Tag)
	assert.Equal(t, "createUserInput.Role", errs[1].FailedField)
	assert.Equal(t, "role", errs[1].Tag)
	assert.Contains(t, Summary(errs), "createUserInput.Role failed role")
}

func TestOrderStatusValidation(t *testing.T) {
	assert.Empty(t, ValidateStruct(statusInput{Status: "received"}))
	errs := ValidateStruct(statusInput{Status: "recieved"})
	require.Len(t, errs, 1)
	assert.Equal(t, "order_status", errs[0].Tag)
}
