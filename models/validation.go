package models

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/ray-remotestate/menuboard/apperr"
)

// fieldErrors collects every problem of an input; the first message per
// field ends up in the error details.
type fieldErrors struct {
	errs   *multierror.Error
	fields map[string]string
}

func (f *fieldErrors) add(field, msg string) {
	if f.fields == nil {
		f.fields = make(map[string]string)
	}
	if _, exists := f.fields[field]; !exists {
		f.fields[field] = msg
	}
	f.errs = multierror.Append(f.errs, fmt.Errorf("%s %s", field, msg))
}

func (f *fieldErrors) err(msg string) error {
	if f.errs.ErrorOrNil() == nil {
		return nil
	}
	appErr := apperr.Validation(msg).WithDetail("fields", f.fields)
	appErr.Err = f.errs
	return appErr
}
