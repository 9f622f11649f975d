// Package db provides CRUD repository operations for userstack data models.
package db

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/FrancescoXX/userstack/internal/models"
)

// Repository provides CRUD operations for the users table.
// Frequently used queries go through a prepared statement cache.
type Repository struct {
	db *sql.DB

	// Statements are prepared on first use and cached for reuse
	stmtCache sync.Map // map[string]*sql.Stmt
}

// NewRepository creates a new Repository instance.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// PrepareStmt gets or creates a prepared statement from cache.
// Key is the query string, value is the prepared statement.
func (r *Repository) PrepareStmt(query string) (*sql.Stmt, error) {
	if stmt, ok := r.stmtCache.Load(query); ok {
		return stmt.(*sql.Stmt), nil
	}

	stmt, err := r.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}

	// Store in cache (if already stored by another goroutine, use existing)
	actual, loaded := r.stmtCache.LoadOrStore(query, stmt)
	if loaded {
		stmt.Close()
		return actual.(*sql.Stmt), nil
	}

	return stmt, nil
}

// Close closes all cached prepared statements.
// Should be called when the Repository is no longer needed.
func (r *Repository) Close() error {
	var firstErr error
	r.stmtCache.Range(func(key, value interface{}) bool {
		stmt := value.(*sql.Stmt)
		if err := stmt.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// CreateUser inserts a new user and assigns its id.
func (r *Repository) CreateUser(user *models.User) error {
	query := `INSERT INTO users (name, email) VALUES (?, ?)`
	result, err := r.db.Exec(query, user.Name, user.Email)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = &id
	return nil
}

// GetUser retrieves a user by id.
func (r *Repository) GetUser(id int64) (*models.User, error) {
	query := `SELECT id, name, email FROM users WHERE id = ?`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := stmt.QueryRow(id).Scan(&user.ID, &user.Name, &user.Email); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users in id order, matching insertion order
// of the sequence-assigned ids.
func (r *Repository) ListUsers() ([]models.User, error) {
	query := `SELECT id, name, email FROM users ORDER BY id`
	stmt, err := r.PrepareStmt(query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser replaces the name and email of user id.
// Returns sql.ErrNoRows when no such user exists.
func (r *Repository) UpdateUser(id int64, params models.UserParams) error {
	query := `UPDATE users SET name = ?, email = ? WHERE id = ?`
	result, err := r.db.Exec(query, params.Name, params.Email, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteUser removes a user by id.
// Returns sql.ErrNoRows when no such user exists.
func (r *Repository) DeleteUser(id int64) error {
	query := `DELETE FROM users WHERE id = ?`
	result, err := r.db.Exec(query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
