package handler

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs custom binding tags on gin's validator.
// Call once before serving requests.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// timeofday accepts wall-clock values as HH:MM or HH:MM:SS.
	v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if _, err := time.Parse("15:04:05", s); err == nil {
			return true
		}
		_, err := time.Parse("15:04", s)
		return err == nil
	})
}
