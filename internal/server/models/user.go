// Package models holds the server-side persistence models.
package models

import "time"

// User is a stored account. ID, Username and Email never change after
// insert; FullName and PasswordHash may be updated. The store assigns ID and
// both timestamps.
type User struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsNew reports whether the record has not been persisted yet.
func (u *User) IsNew() bool {
	return u.ID == 0
}
