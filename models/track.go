package models

// Track is a catalog track as served by the discovery endpoints. Tracks are
// never persisted in this shape; a Song is the durable projection.
type Track struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Artists    []string       `json:"artists"`
	Album      Album          `json:"album"`
	DurationMs int64          `json:"durationMs"`
	PreviewURL string         `json:"previewUrl,omitempty"`
	URI        string         `json:"uri"`
	Language   string         `json:"language,omitempty"`
	Features   *AudioFeatures `json:"features,omitempty"`
}

type Album struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists,omitempty"`
	Image   Image    `json:"image"`
}

type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// AudioFeatures is the triple the mood filter operates on. All three values
// are in [0,1].
type AudioFeatures struct {
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
}
