package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// validateStruct checks v and reports any failure as ErrValidationFailed with message as the inline text.
func validateStruct(v any, message string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	uErr := newUserError(ErrValidationFailed, message, nil)
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		uErr.Fields = make(map[string]string, len(vErrs))
		for _, fe := range vErrs {
			uErr.Fields[fe.Field()] = fe.Translate(translator)
		}
	} else {
		uErr.Err = err
	}
	return uErr
}
