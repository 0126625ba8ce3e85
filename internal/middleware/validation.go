package middleware

import (
	"fmt"

	"github.com/exitdebt/exitdebt_backend/internal/utils"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags used by request DTOs:
// "pan" for Indian PAN numbers and "e164phone" for numbers libphonenumber accepts.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("pan", func(fl validator.FieldLevel) bool {
		return utils.IsValidPAN(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register pan validator: %w", err)
	}
	if err := v.RegisterValidation("e164phone", func(fl validator.FieldLevel) bool {
		return utils.IsValidPhone(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("failed to register e164phone validator: %w", err)
	}
	return nil
}
