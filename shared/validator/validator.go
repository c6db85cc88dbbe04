package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	val "github.com/go-playground/validator/v10"

	"openrun/shared/constant"
	"openrun/shared/failure"
)

var validate *val.Validate

// registerFutureValidation accepts RFC3339 instants that are still ahead of
// the local clock. Schedule execute_at values must pass it.
func registerFutureValidation(field val.FieldLevel) bool {
	switch v := field.Field().Interface().(type) {
	case time.Time:
		return v.After(time.Now())
	case string:
		t, err := time.Parse(constant.DateFormat, v)
		if err != nil {
			return false
		}

		return t.After(time.Now())
	}

	return false
}

// registerTargetDateValidation accepts YYYY-MM-DD stay dates.
func registerTargetDateValidation(field val.FieldLevel) bool {
	str, ok := field.Field().Interface().(string)
	if !ok {
		return false
	}

	_, err := time.Parse(constant.TargetDateFormat, str)

	return err == nil
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	err := validate.RegisterValidation("future", registerFutureValidation)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("targetdate", registerTargetDateValidation)
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("empty", func(fl val.FieldLevel) bool {
		return fl.Field().IsZero()
	})
	if err != nil {
		panic(err)
	}

	err = validate.RegisterValidation("notblank", func(fl val.FieldLevel) bool {
		if fl.Field().Kind() != reflect.String {
			return false
		}

		return strings.TrimSpace(fl.Field().String()) != ""
	})
	if err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	err := decoder.Decode(data)

	if err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
