package domain

import "time"

// IssuedToken is a signed bearer token and the moment it stops being accepted.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}
