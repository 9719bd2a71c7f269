package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/huimingz/commitguard/internal/secrets"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

// structValidator returns the shared validator and its English translator.
// Field names in errors use the mapstructure keys so they match the YAML file.
func structValidator() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("mapstructure")
			if tag == "" || tag == "-" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("strategy", func(fl validator.FieldLevel) bool {
			_, err := secrets.ParseStrategy(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("confidence", func(fl validator.FieldLevel) bool {
			_, err := secrets.ParseConfidence(fl.Field().String())
			return err == nil
		})

		registerMessage(v, trans, "strategy", "{0} must be one of block, redact (got {1})")
		registerMessage(v, trans, "confidence", "{0} must be low, medium, high or a number between 0 and 1 (got {1})")
		registerMessage(v, trans, "gte", "{0} must be at least {1}")
		registerMessage(v, trans, "lte", "{0} must be at most {1}")

		validate = v
		translator = trans
	})
	return validate, translator
}

// registerMessage overrides the message for tag. {0} is the field, {1} the
// rejected value for custom tags and the parameter otherwise.
func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			arg := fe.Param()
			if arg == "" {
				arg = fmt.Sprintf("%q", fe.Value())
			}
			msg, _ := ut.T(tag, fe.Field(), arg)
			return msg
		},
	)
}

func validateStruct(s interface{}) error {
	v, trans := structValidator()
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Translate(trans))
	}
	return errors.New(strings.Join(msgs, "; "))
}
