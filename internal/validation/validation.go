// Package validation checks submitted forms and renders English error messages.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const notBlankTag = "notblank"

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

// Error joins the messages so FieldErrors can travel as an error.
func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for _, msg := range f {
		parts = append(parts, msg)
	}
	return strings.Join(parts, "; ")
}

// First returns one message, preferring the order in fields.
func (f FieldErrors) First(fields ...string) string {
	for _, name := range fields {
		if msg, ok := f[name]; ok {
			return msg
		}
	}
	for _, msg := range f {
		return msg
	}
	return ""
}

// Validator wraps go-playground/validator with English translations.
// Safe for concurrent use after New returns.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New builds a validator that names fields by their `form` tag.
func New() *Validator {
	v := validator.New()

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	_ = v.RegisterTranslation(notBlankTag, trans,
		func(ut.Translator) error { return nil },
		func(_ ut.Translator, fe validator.FieldError) string {
			return fe.Field() + " cannot be blank"
		})

	return &Validator{validate: v, translator: trans}
}

// Struct validates s and returns FieldErrors, or nil when s is valid.
// PRE: s is a struct or pointer to struct
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = fe.Translate(v.translator)
		}
	}
	return out
}
