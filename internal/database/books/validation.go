package books

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/services"
)

var (
	validate *validator.Validate
	yearRe   = regexp.MustCompile(`^\d{1,4}$`)
)

func init() {
	validate = validator.New()

	// Report fields by their form name rather than the Go field name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("year", validateYear)
}

func validateYear(fl validator.FieldLevel) bool {
	return yearRe.MatchString(fl.Field().String())
}

// validateBook returns one FieldError per rejected field, or nil.
func validateBook(book *entities.Book) ([]services.FieldError, error) {
	err := validate.Struct(book)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fieldErrors := make([]services.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		label := fe.StructField()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("Please provide a value for %q", label)
		case "year":
			message = fmt.Sprintf("%q must be a year of up to four digits", label)
		default:
			message = fmt.Sprintf("%q is invalid", label)
		}

		fieldErrors = append(fieldErrors, services.FieldError{
			Field:   fe.Field(),
			Message: message,
		})
	}
	return fieldErrors, nil
}

// Validate checks attrs the way CreateBook does without touching the database.
func Validate(attrs services.Attributes) ([]services.FieldError, error) {
	return validateBook(entities.BuildBook(attrs))
}
