package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/pageza/healthy-cookbook/backend/internal/apperrors"
)

var (
	imagePattern = regexp.MustCompile(`^(https?://|data:image/|/uploads/|/recipe-images/)`)
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the domain rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		mustRegister(v, "objectid", func(fl validator.FieldLevel) bool {
			return IsValidID(fl.Field().String())
		})
		mustRegister(v, "recipe_image", func(fl validator.FieldLevel) bool {
			return imagePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "hex_color", func(fl validator.FieldLevel) bool {
			return colorPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "dietary_tag", func(fl validator.FieldLevel) bool {
			return IsDietaryTag(fl.Field().String())
		})
		mustRegister(v, "dietary_preference", func(fl validator.FieldLevel) bool {
			return IsDietaryPreference(fl.Field().String())
		})
		mustRegister(v, "allergy", func(fl validator.FieldLevel) bool {
			return IsAllergy(fl.Field().String())
		})
		mustRegister(v, "unit", func(fl validator.FieldLevel) bool {
			return IsUnit(fl.Field().String())
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// checkStruct runs the tag rules on s and converts failures to field errors.
func checkStruct(s interface{}) []apperrors.FieldError {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []apperrors.FieldError{{Field: "", Message: err.Error()}}
	}
	out := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name: "Recipe.ingredients[0].unit" -> "ingredients[0].unit".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at least %s item(s)", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return "Please enter a valid email"
	case "objectid":
		return fmt.Sprintf("%s must be a valid id", name)
	case "recipe_image":
		return "Image must be a valid URL, data URI, or local path"
	case "hex_color":
		return "Color must be a valid hex color"
	case "dietary_tag", "dietary_preference":
		return fmt.Sprintf("%q is not a supported dietary option", fe.Value())
	case "allergy":
		return fmt.Sprintf("%q is not a supported allergy", fe.Value())
	case "unit":
		return fmt.Sprintf("%q is not a supported unit", fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// validationError builds the error returned by Validate methods, or nil.
func validationError(fields []apperrors.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return apperrors.Validation("Validation failed", fields...)
}
