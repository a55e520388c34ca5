package db

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mattn/go-sqlite3"
	"github.com/mixtape-fm/mixtape/models"
)

// DB is a wrapper around sql.DB
type DB struct {
	*sql.DB
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// Initialize sets up the database tables
func (db *DB) Initialize() error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS songs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		catalog_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		artists TEXT NOT NULL, -- JSON array of artist names
		album TEXT,
		image_url TEXT,
		duration_ms INTEGER,
		preview_url TEXT,
		uri TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS playlists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		public_id TEXT NOT NULL UNIQUE,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		cover_url TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`)
	if err != nil {
		return err
	}

	// per-owner name uniqueness is a real constraint, not just a
	// creation-time check
	_, err = db.Exec(`
	CREATE UNIQUE INDEX IF NOT EXISTS idx_playlists_owner_name
	ON playlists(user_id, name COLLATE NOCASE)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS playlist_songs (
		playlist_id INTEGER NOT NULL,
		song_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		added_at TIMESTAMP,
		PRIMARY KEY (playlist_id, song_id),
		FOREIGN KEY (playlist_id) REFERENCES playlists(id),
		FOREIGN KEY (song_id) REFERENCES songs(id)
	)`)

	return err
}

// translateErr maps sqlite constraint violations onto the shared Conflict
// sentinel so callers never see driver error types.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return models.ErrConflict
	}
	return err
}

func marshalArtists(artists []string) string {
	b, err := json.Marshal(artists)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalArtists(raw string) []string {
	var artists []string
	if err := json.Unmarshal([]byte(raw), &artists); err != nil {
		return nil
	}
	return artists
}
