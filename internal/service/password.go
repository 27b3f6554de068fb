package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashPassword хэширует пароль с помощью bcrypt.
// Стоимость фиксируется на момент хэширования (DefaultCost) и зашита в digest,
// поэтому checkPassword определяет её автоматически.
func hashPassword(password string) (string, error) {
	const op = "service.password.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
// На битом digest не паникует и не возвращает ошибку — просто false.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
