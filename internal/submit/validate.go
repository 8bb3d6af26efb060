package submit

import (
	"errors"
	"reflect"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// ErrValidation marks a submission rejected before any network call.
var ErrValidation = errors.New("validation failed")

// FieldError names one missing or invalid draft field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every problem found in one submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return e.Fields[0].Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

const requiredTag = "required"

type checker struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newChecker() *checker {
	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")

	v := validator.New()
	// Report user-facing labels instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})
	_ = v.RegisterTranslation(requiredTag, trans,
		func(t ut.Translator) error { return t.Add(requiredTag, "{0} required", true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(requiredTag, fe.Field())
			return s
		},
	)

	return &checker{validate: v, translator: trans}
}

// check returns nil or a *ValidationError keyed by draft field names.
func (c *checker) check(sub Submission) error {
	err := c.validate.Struct(sub)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []FieldError{{Message: err.Error()}}}
	}

	typ := reflect.TypeOf(sub)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		field := fe.StructField()
		if sf, ok := typ.FieldByName(fe.StructField()); ok {
			if name := sf.Tag.Get("form"); name != "" {
				field = name
			}
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Message: fe.Translate(c.translator)})
	}
	return out
}
