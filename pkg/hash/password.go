package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost        = 12
	MinPasswordLength = 8
)

func Hash(password string) (string, error) {
	return hashWithCost(password, bcryptCost)
}

func Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func hashWithCost(password string, cost int) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// Bcrypt satisfies service.PasswordHasher. A zero Cost uses the package default.
type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcryptCost
	}
	return hashWithCost(password, cost)
}

func (b Bcrypt) Compare(hashedPassword, password string) error {
	return Compare(hashedPassword, password)
}
