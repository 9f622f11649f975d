// Package models provides data model definitions for userstack.
package models

// User represents one managed user record.
type User struct {
	ID    *int64 `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}

// Persisted reports whether the store has assigned an identity.
// ID is nil until the first insert and immutable afterwards.
func (u *User) Persisted() bool {
	return u.ID != nil
}

// UserParams holds the fields a caller may set on insert or replace.
// Keeping input types separate from the domain model keeps id assignment
// with the store: params never carry one.
type UserParams struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
