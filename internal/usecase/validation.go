package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		return IsValidCNPJ(fl.Field().String())
	})
	_ = v.RegisterValidation("br_phone", func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	return v
}

// validateStruct traduz as falhas do validator para ValidationError.
func validateStruct(s interface{}) []ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "body", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

// tagRule valida um valor solto com as mesmas tags usadas nos structs de entrada.
func tagRule(tag string) func(string) string {
	return func(v string) string {
		err := validate.Var(v, tag)
		if err == nil {
			return ""
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return describe(fieldErrs[0])
		}
		return "is invalid"
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "cnpj":
		return "must be a valid CNPJ"
	case "br_phone":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	case "len":
		return "must have exactly " + fe.Param() + " characters"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}

// OnlyDigits remove máscara de CNPJ e telefone.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var (
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

func IsValidCNPJ(raw string) bool {
	cnpj := OnlyDigits(raw)
	if len(cnpj) != 14 {
		return false
	}
	if strings.Count(cnpj, cnpj[:1]) == 14 {
		return false
	}

	digits := make([]int, 14)
	for i, r := range cnpj {
		digits[i] = int(r - '0')
	}

	return checkDigit(digits[:12], cnpjWeights1) == digits[12] &&
		checkDigit(digits[:13], cnpjWeights2) == digits[13]
}

func checkDigit(digits, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += digits[i] * w
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

// IsValidPhone aceita telefones brasileiros com DDD, com ou sem máscara.
func IsValidPhone(raw string) bool {
	digits := OnlyDigits(raw)
	if len(digits) < 10 || len(digits) > 13 {
		return false
	}
	parsed, err := phonenumbers.Parse(digits, "BR")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(parsed)
}

// normalizeText aplica trim e trata string vazia como nulo.
func normalizeText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func normalizeDigits(s *string) *string {
	if s == nil {
		return nil
	}
	v := OnlyDigits(*s)
	if v == "" {
		return nil
	}
	return &v
}

func textOrNil(s string) *string {
	return normalizeText(&s)
}
