package db

import (
	"database/sql"
	"time"

	"github.com/mixtape-fm/mixtape/models"
)

// CreatePlaylist persists a new empty playlist. A case-insensitive name
// collision for the same owner surfaces as models.ErrConflict via the
// unique index.
func (db *DB) CreatePlaylist(p *models.Playlist) (int64, error) {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	result, err := db.Exec(`
	INSERT INTO playlists (public_id, user_id, name, description, cover_url, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.PublicID, p.UserID, p.Name, p.Description, p.CoverURL, now, now)

	if err != nil {
		return 0, translateErr(err)
	}

	return result.LastInsertId()
}

// ListPlaylistsByUser returns the owner's playlists in stored order with
// their song counts.
func (db *DB) ListPlaylistsByUser(userID int64) ([]*models.Playlist, error) {
	rows, err := db.Query(`
	SELECT p.id, p.public_id, p.user_id, p.name, p.description, p.cover_url,
	       p.created_at, p.updated_at,
	       (SELECT COUNT(*) FROM playlist_songs ps WHERE ps.playlist_id = p.id)
	FROM playlists p
	WHERE p.user_id = ?
	ORDER BY p.id`, userID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []*models.Playlist

	for rows.Next() {
		p := &models.Playlist{}
		err := rows.Scan(
			&p.ID, &p.PublicID, &p.UserID, &p.Name, &p.Description,
			&p.CoverURL, &p.CreatedAt, &p.UpdatedAt, &p.SongCount)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}

	return playlists, rows.Err()
}

// GetPlaylistByPublicID retrieves a playlist by its exposed identifier.
// Returns nil, nil when no playlist matches.
func (db *DB) GetPlaylistByPublicID(publicID string) (*models.Playlist, error) {
	p := &models.Playlist{}

	err := db.QueryRow(`
	SELECT id, public_id, user_id, name, description, cover_url, created_at, updated_at
	FROM playlists WHERE public_id = ?`, publicID).Scan(
		&p.ID, &p.PublicID, &p.UserID, &p.Name, &p.Description,
		&p.CoverURL, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return p, nil
}

// UpsertSong inserts or refreshes the durable projection of a catalog track
// and returns the row id. Songs are keyed by catalog id and never deleted.
func (db *DB) UpsertSong(s *models.Song) (int64, error) {
	now := time.Now().UTC()

	var id int64
	err := db.QueryRow(`
	INSERT INTO songs (catalog_id, title, artists, album, image_url, duration_ms, preview_url, uri, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(catalog_id) DO UPDATE SET
		title = excluded.title,
		artists = excluded.artists,
		album = excluded.album,
		image_url = excluded.image_url,
		duration_ms = excluded.duration_ms,
		preview_url = excluded.preview_url,
		uri = excluded.uri,
		updated_at = excluded.updated_at
	RETURNING id`,
		s.CatalogID, s.Title, marshalArtists(s.Artists), s.Album, s.ImageURL,
		s.DurationMs, s.PreviewURL, s.URI, now, now).Scan(&id)

	if err != nil {
		return 0, err
	}

	s.ID = id
	return id, nil
}

// AddSongToPlaylist appends a song reference at the end of the playlist.
// Returns false without error when the reference already exists.
func (db *DB) AddSongToPlaylist(playlistID, songID int64) (bool, error) {
	var exists int
	err := db.QueryRow(`
	SELECT COUNT(*) FROM playlist_songs WHERE playlist_id = ? AND song_id = ?`,
		playlistID, songID).Scan(&exists)
	if err != nil {
		return false, err
	}
	if exists > 0 {
		return false, nil
	}

	_, err = db.Exec(`
	INSERT INTO playlist_songs (playlist_id, song_id, position, added_at)
	VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM playlist_songs WHERE playlist_id = ?), ?)`,
		playlistID, songID, playlistID, time.Now().UTC())

	if err != nil {
		return false, translateErr(err)
	}

	return true, nil
}

// RemoveSongFromPlaylist deletes every reference to the catalog id from the
// playlist and reports how many were removed. Removing an absent song is
// not an error.
func (db *DB) RemoveSongFromPlaylist(playlistID int64, catalogID string) (int64, error) {
	result, err := db.Exec(`
	DELETE FROM playlist_songs
	WHERE playlist_id = ?
	AND song_id IN (SELECT id FROM songs WHERE catalog_id = ?)`,
		playlistID, catalogID)

	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// PlaylistSongs returns the playlist's songs in insertion order.
func (db *DB) PlaylistSongs(playlistID int64) ([]models.Song, error) {
	rows, err := db.Query(`
	SELECT s.id, s.catalog_id, s.title, s.artists, s.album, s.image_url,
	       s.duration_ms, s.preview_url, s.uri
	FROM songs s
	JOIN playlist_songs ps ON ps.song_id = s.id
	WHERE ps.playlist_id = ?
	ORDER BY ps.position`, playlistID)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []models.Song

	for rows.Next() {
		var s models.Song
		var artists string
		err := rows.Scan(
			&s.ID, &s.CatalogID, &s.Title, &artists, &s.Album,
			&s.ImageURL, &s.DurationMs, &s.PreviewURL, &s.URI)
		if err != nil {
			return nil, err
		}
		s.Artists = unmarshalArtists(artists)
		songs = append(songs, s)
	}

	return songs, rows.Err()
}

// TouchPlaylist refreshes the playlist's update timestamp.
func (db *DB) TouchPlaylist(playlistID int64) error {
	_, err := db.Exec(`
	UPDATE playlists SET updated_at = ? WHERE id = ?`,
		time.Now().UTC(), playlistID)
	return err
}

// UpdatePlaylistMeta overwrites only the fields present in the incoming
// payload; nil pointers leave stored values untouched.
func (db *DB) UpdatePlaylistMeta(playlistID int64, name, description, coverURL *string) error {
	query := "UPDATE playlists SET updated_at = ?"
	args := []any{time.Now().UTC()}

	if name != nil {
		query += ", name = ?"
		args = append(args, *name)
	}
	if description != nil {
		query += ", description = ?"
		args = append(args, *description)
	}
	if coverURL != nil {
		query += ", cover_url = ?"
		args = append(args, *coverURL)
	}

	query += " WHERE id = ?"
	args = append(args, playlistID)

	_, err := db.Exec(query, args...)
	return translateErr(err)
}
