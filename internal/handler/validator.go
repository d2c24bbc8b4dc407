package handler

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Validator adapts go-playground/validator to echo.Validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator reporting fields by their json names
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate implements echo.Validator
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

var fieldMessages = map[string]string{
	"required": "Este campo es obligatorio.",
	"email":    "Introduce una dirección de correo válida.",
	"oneof":    "Selecciona una opción válida.",
	"max":      "El valor es demasiado largo.",
	"min":      "El valor es demasiado corto.",
	"gte":      "El valor es demasiado bajo.",
	"lte":      "El valor es demasiado alto.",
}

// fieldErrors turns validation failures into per field messages
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("Valor inválido (%s).", fe.Tag())
		}
		out[fe.Field()] = msg
	}
	return out
}

// Sanitizers for user supplied text. Contact messages are reduced to plain
// text, product descriptions keep safe formatting markup.
var (
	plainText = bluemonday.StrictPolicy()
	richText  = bluemonday.UGCPolicy()
)

// sanitizePlain strips markup and returns the text unescaped, the way it
// was typed. Escaping happens when the text is rendered.
func sanitizePlain(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}

func sanitizeRich(s string) string {
	return strings.TrimSpace(richText.Sanitize(s))
}
