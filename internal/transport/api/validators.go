package api

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode"

	"github.com/gin-gonic/gin/binding"

	"github.com/go-playground/validator/v10"
)

var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateMaxBytes в отличии от тэга max который проверяет длину рун, - проверят длину байт в поле.
func validateMaxBytes(fl validator.FieldLevel) bool {
	param := fl.Param() // получаем значение из тега
	maxBytes, err := strconv.Atoi(param)
	if err != nil {
		return false
	}

	// нужно убедится что значение поля - строка.
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	return len([]byte(str)) <= maxBytes
}

// validateUsernameFormat допускает только латиницу, цифры, подчеркивание и дефис.
func validateUsernameFormat(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return usernameRegexp.MatchString(str)
}

// validatePasswordStrength требует минимум 8 символов, заглавную и строчную
// буквы, цифру и спецсимвол.
func validatePasswordStrength(fl validator.FieldLevel) bool {
	str, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	const minPasswordLength = 8
	if len([]rune(str)) < minPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range str {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSpecial
}

func registerValidators() error {
	v, _ := binding.Validator.Engine().(*validator.Validate)

	validators := map[string]validator.Func{
		"max_bytes":         validateMaxBytes,
		"username_format":   validateUsernameFormat,
		"password_strength": validatePasswordStrength,
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("validator registration %s: %s", tag, err.Error())
		}
	}
	return nil
}
