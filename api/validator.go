package api

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/portal-apr/portal-apr-backend/models"
	"github.com/portal-apr/portal-apr-backend/pure_utils"
)

var registerOnce sync.Once

// registerValidators adds the "rut" and "periodo" binding tags to gin's validator, and makes
// validation errors use the json names of the fields.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldNameFromTag)
		_ = v.RegisterValidation("rut", func(fl validator.FieldLevel) bool {
			_, err := pure_utils.ValidateRut(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("periodo", func(fl validator.FieldLevel) bool {
			_, err := models.ParsePeriodo(fl.Field().String())
			return err == nil
		})
	})
}

func fieldNameFromTag(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

func adaptFieldValidationError(fe validator.FieldError) string {
	inner := func(fe validator.FieldError) string {
		switch fe.ActualTag() {
		case "required":
			return "is required"
		case "oneof":
			return fmt.Sprintf("must be one of %s", strings.Join(strings.Split(fe.Param(), " "), ", "))
		case "min":
			if reflect.TypeOf(fe.Value()).Kind() == reflect.Slice {
				return fmt.Sprintf("must have at least %s items", fe.Param())
			}
			return fmt.Sprintf("must be at least %s", fe.Param())
		case "max":
			if reflect.TypeOf(fe.Value()).Kind() == reflect.Slice {
				return fmt.Sprintf("must have at most %s items", fe.Param())
			}
			return fmt.Sprintf("must be at most %s", fe.Param())
		case "email":
			return "should be an email address"
		case "uuid":
			return "should be a UUID"
		case "rut":
			return "should be a valid rut, like 12345678-5"
		case "periodo":
			return "should be a periodo formatted YYYY-MM"
		}
		return "is invalid"
	}

	return fmt.Sprintf("field `%s` %s", fe.Field(), inner(fe))
}
