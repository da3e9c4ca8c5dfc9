// Package password реализует хеширование паролей и проверку формы регистрации.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

// MinLength минимальная длина пароля при регистрации.
const MinLength = 6

// GetHash принимает пароль пользователя и возвращает его bcrypt-хеш.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash сравнивает bcrypt-хеш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хешу.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Validate проверяет пару пароль/подтверждение из формы регистрации.
// Несовпадение проверяется раньше длины.
func Validate(password, confirm string) error {
	if password != confirm {
		return models.ErrPasswordMismatch
	}
	if len(password) < MinLength {
		return models.ErrPasswordTooShort
	}
	return nil
}
