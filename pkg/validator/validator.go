package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"go-warehouse-ms/internal/model"
)

type ErrorResponse struct {
	FailedField string `json:"failed_field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

var validate = validator.New()

func init() {
	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		switch v := fl.Field().Interface().(type) {
		case model.Role:
			return v.IsValid()
		case string:
			return model.Role(v).IsValid()
		}
		return false
	})
	validate.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		switch v := fl.Field().Interface().(type) {
		case model.OrderStatus:
			return v.IsValid()
		case string:
			return model.OrderStatus(v).IsValid()
		}
		return false
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range validationErrors {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Summary joins the failures into one line for error messages.
func Summary(errs []*ErrorResponse) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Value != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", e.FailedField, e.Tag, e.Value))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", e.FailedField, e.Tag))
	}
	return strings.Join(parts, "; ")
}
