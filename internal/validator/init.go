package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pmercer01gh/easy-tic-tac-toe/internal/game"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := RegisterDifficulty(validate); err != nil {
		panic(err)
	}
}

// RegisterDifficulty installs the "difficulty" tag on v, which accepts any
// spelling game.ParseDifficulty accepts. gin's binding engine needs it too.
func RegisterDifficulty(v *validator.Validate) error {
	return v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		_, err := game.ParseDifficulty(fl.Field().String())
		return err == nil
	})
}

func GetValidator() *validator.Validate {
	return validate
}

// RegisterGinBinding adds the custom tags to gin's request binding.
func RegisterGinBinding() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return RegisterDifficulty(v)
}
