package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/ttacon/libphonenumber"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var (
	validate      = validator.New()
	defaultRegion atomic.Value
	gstinPattern  = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
)

func init() {
	defaultRegion.Store("IN")

	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})

	// decimals are validated through their string form; a struct kind would be walked as a nested struct
	validate.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, decimal.NullDecimal{})
	validate.RegisterValidation("dec_gte0", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative()
	})
	validate.RegisterValidation("dec_gt0", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})

	// dec_places=N caps the scale to what the column stores, e.g. decimal(20,6)
	validate.RegisterValidation("dec_places", func(fl validator.FieldLevel) bool {
		places, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.Round(int32(places)).Equal(d)
	})

	validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidPhone(fl.Field().String())
	})
	validate.RegisterValidation("gstin", func(fl validator.FieldLevel) bool {
		return gstinPattern.MatchString(strings.ToUpper(fl.Field().String()))
	})
}

func decimalValue(field reflect.Value) interface{} {
	switch v := field.Interface().(type) {
	case decimal.Decimal:
		return v.String()
	case decimal.NullDecimal:
		if v.Valid {
			return v.Decimal.String()
		}
	}
	return nil
}

// SetDefaultRegion sets the region used for numbers without a "+" prefix.
func SetDefaultRegion(region string) {
	if region != "" {
		defaultRegion.Store(strings.ToUpper(region))
	}
}

// ValidPhone reports whether number parses as a valid phone number.
func ValidPhone(number string) bool {
	p, err := libphonenumber.Parse(number, defaultRegion.Load().(string))
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(p)
}

// NormalizePhone formats number as E.164, or returns it unchanged when unparsable.
func NormalizePhone(number string) string {
	p, err := libphonenumber.Parse(number, defaultRegion.Load().(string))
	if err != nil {
		return number
	}
	return libphonenumber.Format(p, libphonenumber.E164)
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "body", Tag: "invalid"}}
		}
		for _, err := range ve {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Describe renders the first failure the way API clients see it.
func Describe(errs []*ErrorResponse) string {
	if len(errs) == 0 {
		return ""
	}
	first := errs[0]
	return fmt.Sprintf("Field '%s' failed on tag '%s'", first.FailedField, first.Tag)
}
