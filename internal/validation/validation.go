// Package validation checks request payloads and path identifiers before they
// reach the database.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/AnshRaj112/survey-backend/internal/errs"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so clients see "profileImg", not "ProfileImg".
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	// maxbytes bounds the encoded length of a string, unlike max which counts runes.
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// Struct validates a request payload using its `validate` tags. It returns nil
// or a 400 *errs.HTTPError listing every failing field.
func Struct(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs.ValidationError(err)
	}

	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fe.Field(),
			Error: describe(fe),
		})
	}
	return errs.NewBadRequestError(summary(fieldErrors), fieldErrors)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must not exceed %s bytes", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
		return "failed " + fe.Tag()
	}
}

func summary(fieldErrors []errs.FieldError) string {
	var required []string
	for _, fe := range fieldErrors {
		if fe.Error == "is required" {
			required = append(required, fe.Field)
		}
	}
	if len(required) == len(fieldErrors) {
		return fmt.Sprintf("Missing required fields (%s).", strings.Join(required, ", "))
	}
	return "Validation failed"
}

// ObjectID parses a path identifier. A malformed value is a client error, so it
// comes back as a 400 naming the resource.
func ObjectID(hex, resource string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, errs.NewBadRequestError(fmt.Sprintf("Invalid %s id", resource), []errs.FieldError{
			{Field: "id", Error: "must be a 24 character hex ObjectID"},
		})
	}
	return id, nil
}
