package user

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"travelagency/pkg/apperr"
)

const MinPasswordLength = 8

func HashPassword(plain string, cost int) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", apperr.Invalid("password", "", "password must be at least 8 characters")
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports false for a mismatch and an error for anything
// else, such as a malformed hash.
func CheckPassword(hash, plain string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return err == nil, err
}
