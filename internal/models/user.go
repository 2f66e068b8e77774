package models

// User is one row of the credential file.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
	Email        string `json:"email"`
}
