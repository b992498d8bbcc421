package catalogclient

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/catalog"
	"github.com/janhq/library-api/internal/domain/media"
)

const coverArtBase = "https://coverartarchive.org/release/"

// MusicBrainz searches releases. The service asks clients to identify
// themselves with a User-Agent and to stay at one request per second.
type MusicBrainz struct {
	*client
}

var _ catalog.Provider = (*MusicBrainz)(nil)

// NewMusicBrainz creates a MusicBrainz provider.
func NewMusicBrainz(cfg Config, log zerolog.Logger) *MusicBrainz {
	if cfg.RatePerSecond <= 0 || cfg.RatePerSecond > 1 {
		cfg.RatePerSecond = 1
	}
	return &MusicBrainz{client: newClient("musicbrainz", cfg, log)}
}

func (m *MusicBrainz) Name() string { return "musicbrainz" }

type releasesResponse struct {
	Releases []struct {
		ID             string `json:"id"`
		Title          string `json:"title"`
		Date           string `json:"date"`
		Disambiguation string `json:"disambiguation"`
		ArtistCredit   []struct {
			Name       string `json:"name"`
			JoinPhrase string `json:"joinphrase"`
		} `json:"artist-credit"`
	} `json:"releases"`
}

// Search looks up releases by free text.
func (m *MusicBrainz) Search(ctx context.Context, _ media.Type, query string, limit int) ([]catalog.Result, error) {
	var out releasesResponse
	err := m.get(ctx, "/release", map[string]string{
		"query": query,
		"limit": strconv.Itoa(limit),
		"fmt":   "json",
	}, &out)
	if err != nil {
		return nil, err
	}

	n := clamp(len(out.Releases), limit)
	results := make([]catalog.Result, 0, n)
	for _, r := range out.Releases[:n] {
		var artist strings.Builder
		for _, credit := range r.ArtistCredit {
			artist.WriteString(credit.Name)
			artist.WriteString(credit.JoinPhrase)
		}
		results = append(results, catalog.Result{
			Source:      m.Name(),
			ExternalID:  r.ID,
			Type:        media.TypeMusic,
			Title:       r.Title,
			Author:      artist.String(),
			Description: r.Disambiguation,
			ReleaseYear: parseYear(r.Date),
			CoverURL:    coverArtBase + r.ID + "/front-250",
		})
	}
	return results, nil
}
