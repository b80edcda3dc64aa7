package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("cors_origin", isCORSOrigin); err != nil {
		return nil, nil, fmt.Errorf("failed to register cors_origin validation: %w", err)
	}
	if err := validate.RegisterTranslation("cors_origin", trans, func(ut ut.Translator) error {
		return ut.Add("cors_origin", "{0} must be \"*\" or an http(s) origin without a path", true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T("cors_origin", fe.Field())
		return t
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to register cors_origin translation: %w", err)
	}

	return validate, trans, nil
}

func isCORSOrigin(fl validator.FieldLevel) bool {
	origin := fl.Field().String()
	if origin == "*" {
		return true
	}
	rest, ok := strings.CutPrefix(origin, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(origin, "http://")
	}
	return ok && rest != "" && !strings.Contains(rest, "/")
}
