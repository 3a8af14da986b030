package domain

import (
	"strings"
	"time"
)

// User — учётная запись покупателя.
type User struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	// PasswordHash хранится как непрозрачный секрет и никогда не попадает в DTO.
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidateInvariants проверяет базовые инварианты пользователя.
func (u *User) ValidateInvariants() []error {
	var errs []error

	if strings.TrimSpace(u.Email) == "" {
		errs = append(errs, ErrEmailRequired)
	}
	if strings.TrimSpace(u.PasswordHash) == "" {
		errs = append(errs, ErrCredentialRequired)
	}

	return errs
}
