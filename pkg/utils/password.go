package utils

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(hashedPassword, password string) bool {
	if hashedPassword == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 6 characters")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password must not be blank")
	}
	return nil
}
