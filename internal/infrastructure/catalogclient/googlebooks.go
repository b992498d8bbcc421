package catalogclient

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain/catalog"
	"github.com/janhq/library-api/internal/domain/media"
)

// GoogleBooks searches the Google Books volumes API.
type GoogleBooks struct {
	*client
	apiKey string
}

var _ catalog.Provider = (*GoogleBooks)(nil)

// NewGoogleBooks creates a Google Books provider. The API key is optional.
func NewGoogleBooks(cfg Config, log zerolog.Logger) *GoogleBooks {
	return &GoogleBooks{client: newClient("googlebooks", cfg, log), apiKey: cfg.APIKey}
}

func (g *GoogleBooks) Name() string { return "googlebooks" }

type volumesResponse struct {
	Items []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title               string   `json:"title"`
			Subtitle            string   `json:"subtitle"`
			Authors             []string `json:"authors"`
			Description         string   `json:"description"`
			PublishedDate       string   `json:"publishedDate"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
			ImageLinks struct {
				Thumbnail string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Search looks up books by free text.
func (g *GoogleBooks) Search(ctx context.Context, _ media.Type, query string, limit int) ([]catalog.Result, error) {
	params := map[string]string{
		"q":          query,
		"maxResults": strconv.Itoa(limit),
		"printType":  "books",
	}
	if g.apiKey != "" {
		params["key"] = g.apiKey
	}

	var out volumesResponse
	if err := g.get(ctx, "/volumes", params, &out); err != nil {
		return nil, err
	}

	results := make([]catalog.Result, 0, clamp(len(out.Items), limit))
	for _, item := range out.Items[:clamp(len(out.Items), limit)] {
		info := item.VolumeInfo
		title := info.Title
		if info.Subtitle != "" {
			title += ": " + info.Subtitle
		}
		results = append(results, catalog.Result{
			Source:      g.Name(),
			ExternalID:  item.ID,
			Type:        media.TypeBook,
			Title:       title,
			Author:      strings.Join(info.Authors, ", "),
			Description: info.Description,
			ReleaseYear: parseYear(info.PublishedDate),
			ISBN:        pickISBN(info.IndustryIdentifiers),
			CoverURL:    strings.Replace(info.ImageLinks.Thumbnail, "http://", "https://", 1),
		})
	}
	return results, nil
}

func pickISBN(ids []struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}) string {
	var isbn10 string
	for _, id := range ids {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}
