package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"cinelog/proj/internal/domain/models"
)

var ErrNotFound = errors.New("movie not found")

// Client wraps the external movie-metadata lookup service. It holds no
// state beyond connection configuration; results are mapped into the
// domain structs at this boundary so nothing downstream handles the
// service's raw field bag.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

func New(log *slog.Logger, baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("metadata: base URL is required")
	}
	if apiKey == "" {
		return nil, errors.New("metadata: API key is required")
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}, nil
}

// searchResponse is the service's search envelope. Response is the
// string "True"/"False"; "False" with an Error message means zero
// matches, not a transport failure.
type searchResponse struct {
	Search   []movieSummaryDoc `json:"Search"`
	Response string            `json:"Response"`
	Error    string            `json:"Error"`
}

type movieSummaryDoc struct {
	ImdbID string `json:"imdbID"`
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	Poster string `json:"Poster"`
}

type movieDetailDoc struct {
	ImdbID     string `json:"imdbID"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	Genre      string `json:"Genre"`
	Runtime    string `json:"Runtime"`
	Plot       string `json:"Plot"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	Language   string `json:"Language"`
	Awards     string `json:"Awards"`
	ImdbRating string `json:"imdbRating"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

func (c *Client) Search(ctx context.Context, term string) ([]models.MovieSummary, error) {
	const op = "metadata.Client.Search"
	log := c.log.With("op", op, "term", term)
	var resp searchResponse
	if err := c.get(ctx, url.Values{"s": {term}}, &resp); err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if resp.Response != "True" {
		log.Debug("empty search result", "reason", resp.Error)
		return nil, nil
	}
	summaries := make([]models.MovieSummary, 0, len(resp.Search))
	for _, doc := range resp.Search {
		summaries = append(summaries, models.MovieSummary{
			ID:        doc.ImdbID,
			Title:     doc.Title,
			Year:      doc.Year,
			PosterURL: normalizePoster(doc.Poster),
		})
	}
	return summaries, nil
}

func (c *Client) FetchByID(ctx context.Context, id string) (*models.MovieDetail, error) {
	const op = "metadata.Client.FetchByID"
	log := c.log.With("op", op, "id", id)
	var doc movieDetailDoc
	if err := c.get(ctx, url.Values{"i": {id}}, &doc); err != nil {
		log.Error(err.Error())
		return nil, err
	}
	if doc.Response != "True" {
		log.Info("movie not found", "reason", doc.Error)
		return nil, ErrNotFound
	}
	return &models.MovieDetail{
		ID:         doc.ImdbID,
		Title:      doc.Title,
		Year:       doc.Year,
		PosterURL:  normalizePoster(doc.Poster),
		Genre:      doc.Genre,
		Runtime:    doc.Runtime,
		Plot:       doc.Plot,
		Director:   doc.Director,
		Actors:     doc.Actors,
		Language:   doc.Language,
		Awards:     doc.Awards,
		ImdbRating: doc.ImdbRating,
	}, nil
}

func (c *Client) get(ctx context.Context, params url.Values, dst any) error {
	apiURL, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("metadata: invalid base URL: %w", err)
	}
	params.Set("apikey", c.apiKey)
	apiURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL.String(), nil)
	if err != nil {
		return fmt.Errorf("metadata: failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("metadata: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("metadata: service returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("metadata: failed to decode response: %w", err)
	}
	return nil
}

// The service uses the literal string "N/A" for missing posters.
func normalizePoster(poster string) string {
	if poster == "N/A" {
		return ""
	}
	return poster
}
