package catalog

// Wire shapes for the upstream catalog API. Only the fields the service
// projects are declared.

type trackObject struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Artists    []artistObject `json:"artists"`
	Album      *albumObject   `json:"album"`
	DurationMs int64          `json:"duration_ms"`
	PreviewURL string         `json:"preview_url"`
	URI        string         `json:"uri"`
}

type artistObject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type albumObject struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Artists []artistObject `json:"artists"`
	Images  []imageObject  `json:"images"`
}

type imageObject struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type audioFeaturesObject struct {
	ID           string  `json:"id"`
	Valence      float64 `json:"valence"`
	Energy       float64 `json:"energy"`
	Danceability float64 `json:"danceability"`
}

type searchResponse struct {
	Tracks *struct {
		Items []trackObject `json:"items"`
	} `json:"tracks"`
	Artists *struct {
		Items []artistObject `json:"items"`
	} `json:"artists"`
}

type topTracksResponse struct {
	Tracks []trackObject `json:"tracks"`
}

type artistAlbumsResponse struct {
	Items []albumObject `json:"items"`
}

type albumTracksResponse struct {
	Items []trackObject `json:"items"`
}

type newReleasesResponse struct {
	Albums struct {
		Items []albumObject `json:"items"`
	} `json:"albums"`
}

type playlistTracksResponse struct {
	Items []struct {
		Track *trackObject `json:"track"`
	} `json:"items"`
}

type audioFeaturesResponse struct {
	AudioFeatures []*audioFeaturesObject `json:"audio_features"`
}

type trackResponse trackObject
