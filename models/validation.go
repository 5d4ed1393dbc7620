package models

import (
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/leebenson/conform"
)

var (
	validate = validator.New()
	trans    ut.Translator
)

func init() {
	english := en.New()
	uni := ut.New(english, english)
	trans, _ = uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	validate.SetTagName("binding")
}

// Conform trims and normalizes tagged string fields in place.
func Conform(data interface{}) error {
	return conform.Strings(data)
}

// ValidateStruct conforms then validates req, returning one translated error per failing field.
func ValidateStruct(req interface{}) []error {
	if err := Conform(req); err != nil {
		return []error{err}
	}
	err := validate.Struct(req)
	return translateError(err)
}

func translateError(err error) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

// JoinErrors flattens validation errors into one message.
func JoinErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// TranslateValidationError renders a validator error in plain English.
func TranslateValidationError(err error) string {
	return JoinErrors(translateError(err))
}

// Validator exposes the shared validator so the HTTP layer binds with the same rules.
func Validator() *validator.Validate {
	return validate
}
