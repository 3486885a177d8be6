package validator

import (
	apperrors "github.com/jwalitptl/agenda-api/pkg/errors"
)

// Checks collects field failures for one form.
type Checks []apperrors.Field

// Add records k against field unless k is Valid.
func (c *Checks) Add(field string, k Kind) {
	if k.OK() {
		return
	}
	*c = append(*c, apperrors.Field{Field: field, Kind: string(k), Message: k.Message()})
}

// Err returns a validation AppError, or nil when every check passed.
func (c Checks) Err() error {
	if len(c) == 0 {
		return nil
	}
	return apperrors.Validation(c...)
}
