package catalog

import "github.com/mixtape-fm/mixtape/models"

// trackFromWire is the single projection from the upstream track shape to
// the shape every endpoint returns. All track-returning paths go through
// it so the JSON surface stays uniform.
func trackFromWire(t trackObject) models.Track {
	track := models.Track{
		ID:         t.ID,
		Title:      t.Name,
		Artists:    artistNames(t.Artists),
		DurationMs: t.DurationMs,
		PreviewURL: t.PreviewURL,
		URI:        t.URI,
	}

	if t.Album != nil {
		track.Album = albumFromWire(*t.Album)
	}

	return track
}

func albumFromWire(a albumObject) models.Album {
	album := models.Album{
		ID:      a.ID,
		Name:    a.Name,
		Artists: artistNames(a.Artists),
	}

	// the first image is the largest one upstream
	if len(a.Images) > 0 {
		album.Image = models.Image{
			URL:    a.Images[0].URL,
			Height: a.Images[0].Height,
			Width:  a.Images[0].Width,
		}
	}

	return album
}

func artistNames(artists []artistObject) []string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return names
}

func tracksFromWire(items []trackObject) []models.Track {
	tracks := make([]models.Track, 0, len(items))
	for _, item := range items {
		tracks = append(tracks, trackFromWire(item))
	}
	return tracks
}
