package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/yukikurage/toondo/internal/store"
)

// ImageResult is a candidate image for a checklist item or card background.
type ImageResult struct {
	URL    string `json:"url"`
	AIHint string `json:"ai_hint"`
}

// ImageSearch finds candidate images for a query.
type ImageSearch interface {
	Search(ctx context.Context, query string) ([]ImageResult, error)
}

// PlaceholderImageSearch answers every query with placeholder images that
// carry the query as their text.
type PlaceholderImageSearch struct {
	sizes []string
}

func NewPlaceholderImageSearch() *PlaceholderImageSearch {
	return &PlaceholderImageSearch{
		sizes: []string{"600x400", "400x400", "800x450"},
	}
}

// Search returns one placeholder per size.
func (p *PlaceholderImageSearch) Search(ctx context.Context, query string) ([]ImageResult, error) {
	query = strings.Join(strings.Fields(query), " ")
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", store.ErrValidationFailed)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]ImageResult, 0, len(p.sizes))
	for _, size := range p.sizes {
		results = append(results, ImageResult{
			URL:    fmt.Sprintf("https://placehold.co/%s.png?text=%s", size, url.QueryEscape(query)),
			AIHint: query,
		})
	}
	return results, nil
}
