package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
// Keys are json names, or snake_case Go names for untagged fields.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(fieldName)

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerCustom(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		errV10 := make(V10ValidationError)
		for _, fe := range validateErrs {
			errV10[fe.Field()] = fe.Translate(v.translator)
		}

		return errV10
	}

	return nil
}

// rule is a regexp-backed tag with its English message.
type rule struct {
	tag     string
	pattern *regexp.Regexp
	message string
}

var rules = []rule{
	// E.164, optional leading plus.
	{tag: "phone", pattern: regexp.MustCompile(`^\+?[1-9][0-9]{6,14}$`), message: "{0} must be a phone number"},
}

// aliases are composed tags; identifier accepts either contact form.
var aliases = []struct {
	tag, expands, message string
}{
	{tag: "identifier", expands: "email|phone", message: "{0} must be an email address or phone number"},
}

func registerCustom(validate *validator.Validate, trans ut.Translator) error {
	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, matcher(r.pattern)); err != nil {
			return fmt.Errorf("register %s: %w", r.tag, err)
		}
		if err := registerMessage(validate, trans, r.tag, r.message); err != nil {
			return err
		}
	}

	for _, a := range aliases {
		validate.RegisterAlias(a.tag, a.expands)
		if err := registerMessage(validate, trans, a.tag, a.message); err != nil {
			return err
		}
	}

	return nil
}

func matcher(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && re.MatchString(s)
	}
}

func registerMessage(validate *validator.Validate, trans ut.Translator, tag, message string) error {
	err := validate.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("failed to translate validation error", "tag", fe.Tag(), "field", fe.Field(), "error", err)
				return fe.Error()
			}
			return t
		},
	)
	if err != nil {
		return fmt.Errorf("register %s translation: %w", tag, err)
	}

	return nil
}
