// Package validation проверяет обязательные поля форм до отправки в API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

// upiPattern формат UPI идентификатора: имя@банк.
var upiPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{2,256}@[a-zA-Z][a-zA-Z0-9.-]{1,63}$`)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("upi", func(fl validator.FieldLevel) bool {
			return IsUPI(fl.Field().String())
		})
	})
	return validate
}

// IsUPI проверяет формат UPI идентификатора.
func IsUPI(id string) bool {
	return upiPattern.MatchString(strings.TrimSpace(id))
}

// Struct проверяет структуру по тегам validate. Ошибка имеет код VALIDATION_ERROR
// и перечисляет все нарушенные поля.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperror.Wrap(err, apperror.ErrCodeValidation, "некорректные данные формы")
	}

	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fieldError(fe))
	}
	return apperror.Validation(strings.Join(msgs, "; "))
}

// fieldError сообщение для одного нарушенного правила.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " обязательно"
	case "email":
		return field + " должен быть корректным email"
	case "gt":
		return fmt.Sprintf("%s должно быть больше %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s должно быть не меньше %s", field, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s должно быть не меньше %s", field, lowerFirst(fe.Param()))
	case "min":
		return fmt.Sprintf("%s: минимум %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: максимум %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s должно быть одним из: %s", field, fe.Param())
	case "url":
		return field + " должен быть корректным URL"
	case "upi":
		return field + " должен иметь вид имя@банк"
	default:
		return fmt.Sprintf("%s не прошло проверку (%s)", field, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
