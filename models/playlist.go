package models

import "time"

// Playlist is a user-owned, ordered collection of song references.
type Playlist struct {
	ID          int64     `json:"-"`
	PublicID    string    `json:"id"`
	UserID      int64     `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	Songs       []Song    `json:"songs,omitempty"`
	SongCount   int       `json:"songCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Song is the durable projection of a catalog Track. Songs are keyed by the
// catalog identifier, upserted on playlist add, and shared across playlists
// by reference.
type Song struct {
	ID         int64    `json:"-"`
	CatalogID  string   `json:"id"`
	Title      string   `json:"title"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album,omitempty"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	DurationMs int64    `json:"durationMs"`
	PreviewURL string   `json:"previewUrl,omitempty"`
	URI        string   `json:"uri"`
}

// SongFromTrack projects an ephemeral catalog track into its persisted shape.
func SongFromTrack(t Track) Song {
	return Song{
		CatalogID:  t.ID,
		Title:      t.Title,
		Artists:    t.Artists,
		Album:      t.Album.Name,
		ImageURL:   t.Album.Image.URL,
		DurationMs: t.DurationMs,
		PreviewURL: t.PreviewURL,
		URI:        t.URI,
	}
}

// CatalogPlaylist is the subset of an upstream playlist payload used by
// sync: absent fields leave the stored values untouched.
type CatalogPlaylist struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	CoverURL    *string `json:"coverUrl,omitempty"`
}
