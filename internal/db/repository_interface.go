// Package db provides repository interfaces for userstack data models.
package db

import (
	"github.com/FrancescoXX/userstack/internal/models"
)

// UserRepository defines operations for user persistence.
// This interface allows mocking for testing.
type UserRepository interface {
	// CreateUser inserts a new user and assigns its id.
	CreateUser(user *models.User) error

	// GetUser retrieves a user by id.
	GetUser(id int64) (*models.User, error)

	// ListUsers returns all users in id order.
	ListUsers() ([]models.User, error)

	// UpdateUser replaces the name and email of user id.
	UpdateUser(id int64, params models.UserParams) error

	// DeleteUser removes a user by id.
	DeleteUser(id int64) error
}

// Ensure *Repository implements the interface at compile time.
var _ UserRepository = (*Repository)(nil)
