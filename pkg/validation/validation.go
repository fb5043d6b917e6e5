// Package validation checks incoming DTOs and reports the first violation as
// an apperrors value. Field rules live on the DTO struct tags; the id rule
// depends on whether the request addresses an existing entity.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"bookstore/pkg/apperrors"
	"bookstore/pkg/dto"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	MinRating = 0.0
	MaxRating = 5.0
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// ReviewCreation validates an add-review (withID false) or update-review
// (withID true) request.
func ReviewCreation(req dto.ReviewCreationDTO, withID bool) error {
	if err := checkID(req.ID, withID); err != nil {
		return err
	}
	return check(req)
}

func User(req dto.UserDTO, withID bool) error {
	if err := checkID(req.ID, withID); err != nil {
		return err
	}
	return check(req)
}

func Book(req dto.BookDTO, withID bool) error {
	if err := checkID(req.ID, withID); err != nil {
		return err
	}
	return check(req)
}

func checkID(id string, withID bool) error {
	if withID && strings.TrimSpace(id) == "" {
		return apperrors.EmptyField("id")
	}
	if !withID && id != "" {
		return apperrors.UnexpectedField("id")
	}
	return nil
}

func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "gte", "lte":
		limit, _ := strconv.ParseFloat(fe.Param(), 64)
		bound := "minimum"
		if fe.Tag() == "lte" {
			bound = "maximum"
		}
		var value float64
		switch v := fe.Value().(type) {
		case float64:
			value = v
		case *float64:
			value = *v
		}
		return &apperrors.InvalidDoubleRangeError{
			Field: fe.Field(),
			Bound: bound,
			Limit: limit,
			Value: value,
		}
	default:
		return apperrors.EmptyField(fe.Field())
	}
}
