// internal/utils/validator.go
package utils

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var batchIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:\-]{1,128}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("amount", validateAmount)
	validate.RegisterValidation("batch_id", validateBatchID)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// validateAmount accepts a positive base-10 integer string.
func validateAmount(fl validator.FieldLevel) bool {
	n, ok := new(big.Int).SetString(fl.Field().String(), 10)
	return ok && n.Sign() > 0
}

func validateBatchID(fl validator.FieldLevel) bool {
	return batchIDPattern.MatchString(fl.Field().String())
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "eth_addr":
		return e.Field() + " must be a 0x-prefixed 20 byte address"
	case "min":
		return e.Field() + " must have at least " + e.Param() + " entries"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "amount":
		return e.Field() + " must be a positive integer in minor units"
	case "batch_id":
		return e.Field() + " must be 1-128 characters of letters, digits and ._:-"
	default:
		return e.Field() + " is invalid"
	}
}
