package server

import (
	"reflect"

	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
)

// requestValidator replaces gin's default validator so bound requests are trimmed
// before validation and failures read as plain English.
type requestValidator struct{}

func (requestValidator) ValidateStruct(obj interface{}) error {
	if obj == nil {
		return nil
	}
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil
	}
	if failures := models.ValidateStruct(obj); len(failures) > 0 {
		return errs.New(models.JoinErrors(failures), errs.ErrBadRequest.Status)
	}
	return nil
}

func (requestValidator) Engine() interface{} {
	return models.Validator()
}
