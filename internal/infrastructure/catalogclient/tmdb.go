package catalogclient

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/catalog"
	"github.com/janhq/library-api/internal/domain/media"
)

const tmdbImageBase = "https://image.tmdb.org/t/p/w500"

// TMDB searches The Movie Database for movies and tv shows.
type TMDB struct {
	*client
	apiKey string
}

var _ catalog.Provider = (*TMDB)(nil)

// NewTMDB creates a TMDB provider. TMDB requires an API key.
func NewTMDB(cfg Config, log zerolog.Logger) *TMDB {
	return &TMDB{client: newClient("tmdb", cfg, log), apiKey: cfg.APIKey}
}

func (t *TMDB) Name() string { return "tmdb" }

type tmdbResponse struct {
	Results []struct {
		ID           int64  `json:"id"`
		Title        string `json:"title"`
		Name         string `json:"name"`
		Overview     string `json:"overview"`
		ReleaseDate  string `json:"release_date"`
		FirstAirDate string `json:"first_air_date"`
		PosterPath   string `json:"poster_path"`
	} `json:"results"`
}

// Search looks up movies or tv shows depending on mt.
func (t *TMDB) Search(ctx context.Context, mt media.Type, query string, limit int) ([]catalog.Result, error) {
	path := "/search/movie"
	if mt == media.TypeTV {
		path = "/search/tv"
	} else if mt != media.TypeMovie {
		return nil, fmt.Errorf("tmdb does not index %s", mt)
	}

	var out tmdbResponse
	err := t.get(ctx, path, map[string]string{
		"api_key":       t.apiKey,
		"query":         query,
		"include_adult": "false",
	}, &out)
	if err != nil {
		return nil, err
	}

	n := clamp(len(out.Results), limit)
	results := make([]catalog.Result, 0, n)
	for _, r := range out.Results[:n] {
		title, date := r.Title, r.ReleaseDate
		if mt == media.TypeTV {
			title, date = r.Name, r.FirstAirDate
		}
		result := catalog.Result{
			Source:      t.Name(),
			ExternalID:  strconv.FormatInt(r.ID, 10),
			Type:        mt,
			Title:       title,
			Description: r.Overview,
			ReleaseYear: parseYear(date),
		}
		if r.PosterPath != "" {
			result.CoverURL = tmdbImageBase + r.PosterPath
		}
		results = append(results, result)
	}
	return results, nil
}
