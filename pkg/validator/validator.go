package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// DateLayouts are the accepted layouts for date fields, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// Errors maps a request field to its messages.
type Errors map[string][]string

// Add appends a message for field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Has reports whether field already has a message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for field, msgs := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(msgs, ", ")))
	}
	return strings.Join(parts, "; ")
}

// Validator validates request structs against their `validate` tags.
type Validator interface {
	Validate(obj interface{}) Errors
}

type structValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	defaultOnce      sync.Once
	defaultValidator *structValidator
)

// Default returns a process wide validator. Building one registers all
// translations, so it is shared.
func Default() Validator {
	defaultOnce.Do(func() {
		defaultValidator = newStructValidator()
	})
	return defaultValidator
}

// New creates a validator with json field names and English messages.
func New() Validator {
	return newStructValidator()
}

func newStructValidator() *structValidator {
	v := validator.New()

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

	locale := en.New()
	uni := ut.New(locale, locale)
	trans, _ := uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(fmt.Sprintf("validator: register translations: %v", err))
	}

	if err := v.RegisterValidation("date", validateDate); err != nil {
		panic(fmt.Sprintf("validator: register date rule: %v", err))
	}
	registerMessage(v, trans, "date", "{0} must be a valid date")

	return &structValidator{validate: v, trans: trans}
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error {
			return t.Add(tag, text, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

func (v *structValidator) Validate(obj interface{}) Errors {
	errs := Errors{}

	err := v.validate.Struct(obj)
	if err == nil {
		return errs
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs.Add("_request", err.Error())
		return errs
	}

	for _, fe := range validationErrs {
		errs.Add(fe.Field(), fe.Translate(v.trans))
	}
	return errs
}

// ParseDate parses s using DateLayouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func validateDate(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	_, err := ParseDate(field.String())
	return err == nil
}
