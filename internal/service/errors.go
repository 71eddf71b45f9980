package service

import (
	"errors"
	"fmt"

	"brass-inventory/internal/billing"
	"brass-inventory/pkg/validator"

	"gorm.io/gorm"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConsistency       = billing.ErrConsistency
	ErrConflict          = errors.New("conflict")
	ErrBusy              = errors.New("resource busy, retry")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// lookupErr turns gorm's missing-row error into ErrNotFound and passes everything else through.
func lookupErr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(what)
	}
	return err
}

// billingErr maps pricing failures onto the service taxonomy.
func billingErr(err error) error {
	if errors.Is(err, billing.ErrInvalidInput) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}

func validateStruct(v interface{}) error {
	if errs := validator.ValidateStruct(v); len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, validator.Describe(errs))
	}
	return nil
}

// writeErr maps unique-constraint violations onto ErrConflict.
func writeErr(err error, what string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s already exists", ErrConflict, what)
	}
	return err
}
