package db

import (
	"database/sql"
	"time"

	"github.com/mixtape-fm/mixtape/models"
)

// CreateUser adds a new user to the database
func (db *DB) CreateUser(user *models.User) (int64, error) {
	now := time.Now().UTC()

	result, err := db.Exec(`
	INSERT INTO users (username, email, password_hash, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, now, now)

	if err != nil {
		return 0, translateErr(err)
	}

	return result.LastInsertId()
}

// GetUserByEmail retrieves a user by email. Returns nil, nil when no user
// matches.
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	user := &models.User{}

	err := db.QueryRow(`
	SELECT id, username, email, password_hash, created_at, updated_at
	FROM users WHERE email = ?`, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves a user by primary key. Returns nil, nil when no user
// matches.
func (db *DB) GetUserByID(id int64) (*models.User, error) {
	user := &models.User{}

	err := db.QueryRow(`
	SELECT id, username, email, password_hash, created_at, updated_at
	FROM users WHERE id = ?`, id).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return user, nil
}
