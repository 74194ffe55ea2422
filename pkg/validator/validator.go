package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

var validate = validator.New()

// ValidateStruct runs the validator/v10 tags of data and returns one entry
// per failed field, or nil when everything passes.
func ValidateStruct(data interface{}) []FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var errs []FieldError
	for _, fe := range err.(validator.ValidationErrors) {
		errs = append(errs, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: fmt.Sprintf("field '%s' failed on '%s'", fe.Field(), fe.Tag()),
		})
	}
	return errs
}
