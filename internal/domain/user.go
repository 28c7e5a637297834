package domain

import "time"

// User is an account holder. Email, Username and CPF are unique.
type User struct {
	ID           string
	Name         string
	Email        string
	Username     string
	PasswordHash string
	Birthdate    string
	CPF          string
	IsAdmin      bool
	Token        string
	CreatedAt    time.Time
}
