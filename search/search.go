package search

import "context"

type SearchResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Domain      string `json:"domain"`
}

type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
	Page       int    `json:"page,omitempty"`
	Site       string `json:"site,omitempty"`
	TimePeriod string `json:"time_period,omitempty"`
}

type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"total_results"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	HasNext      bool           `json:"has_next"`
	HasPrevious  bool           `json:"has_previous"`
}

type SearchEngine interface {
	Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error)
}
