package validators

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"reflect"
	"strings"
)

// Register installs the custom tags used by the request contracts.
func Register(validate *validator.Validate) {
	_ = validate.RegisterValidation("notblank", NotBlank)
}

// NotBlank returns false if the string is empty or only whitespace.
func NotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		log.Warnf("validator 'notblank' applied to non-string type: %s", field.Kind().String())
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}
