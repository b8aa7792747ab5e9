package helper

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Validate runs struct tags; the result is a field -> messages map, or nil.
func Validate(v any) (map[string][]string, error) {
	err := validate.Struct(v)
	if err == nil {
		return nil, nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, err
	}
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		field := toSnake(fe.Field())
		msg := fe.Tag()
		if p := fe.Param(); p != "" {
			msg += "=" + p
		}
		out[field] = append(out[field], msg)
	}
	return out, nil
}

// ValidateOrRespond writes a 422 when v fails validation. handled=true means
// the response has been written.
func ValidateOrRespond(c *fiber.Ctx, v any) (handled bool, err error) {
	fields, verr := Validate(v)
	if verr != nil {
		return true, JsonError(c, fiber.StatusBadRequest, verr.Error())
	}
	if len(fields) > 0 {
		return true, JsonValidationError(c, fields)
	}
	return false, nil
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(s[i-1] >= 'A' && s[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
