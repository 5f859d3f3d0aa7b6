package validation

import (
	"fmt"
	"html"
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	// Все свободные текстовые поля ограничены 100 символами
	MaxTextLength = 100

	// Политика длины пароля (осознанное ограничение, не техническое)
	MinPasswordLength = 8
	MaxPasswordLength = 12
)

// Sanitize подготавливает свободный текст к сохранению: обрезает пробелы,
// ограничивает длину (в рунах, не в байтах) и экранирует HTML-метасимволы.
// Экранирование выполняется после усечения, поэтому сохранённое значение
// может быть длиннее MaxTextLength байт.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > MaxTextLength {
		s = string([]rune(s)[:MaxTextLength])
	}
	return html.EscapeString(s)
}

// SanitizeText проверяет обязательное текстовое поле и возвращает его
// очищенную форму. Длина проверяется до экранирования.
func SanitizeText(field, value string) (string, error) {
	if err := ValidateText(field, value); err != nil {
		return "", err
	}
	return Sanitize(value), nil
}

// ValidateEmail проверяет синтаксис email
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if len(email) > MaxTextLength {
		return fmt.Errorf("email cannot exceed %d characters", MaxTextLength)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword проверяет пароль на соответствие политике длины
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password cannot exceed %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateText проверяет обязательное текстовое поле
func ValidateText(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	if utf8.RuneCountInString(value) > MaxTextLength {
		return fmt.Errorf("%s cannot exceed %d characters", field, MaxTextLength)
	}
	return nil
}
