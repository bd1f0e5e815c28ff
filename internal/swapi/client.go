// Package swapi is a thin client for the Star Wars JSON API.
// Failures are returned verbatim; there are no retries and no
// error translation beyond wrapping.
package swapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "stackpad/1.0 (+https://github.com/stackpad)"

// Film is one record from the films collection.
type Film struct {
	Title        string `json:"title"`
	EpisodeID    int    `json:"episode_id"`
	Director     string `json:"director"`
	ReleaseDate  string `json:"release_date"`
	OpeningCrawl string `json:"opening_crawl"`
	URL          string `json:"url"`
}

// Client calls the film API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL, e.g.
// "https://swapi.dev/api". The timeout bounds each request.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Films fetches the full film list.
func (c *Client) Films(ctx context.Context) ([]Film, error) {
	var payload struct {
		Results []Film `json:"results"`
	}
	if err := c.get(ctx, c.baseURL+"/films/", &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// Film fetches a single film. The id is passed through to the remote URL
// unvalidated; an unknown id surfaces as the remote's error status.
func (c *Client) Film(ctx context.Context, id string) (Film, error) {
	var film Film
	if err := c.get(ctx, c.baseURL+"/films/"+id+"/", &film); err != nil {
		return Film{}, err
	}
	return film, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("swapi: failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("swapi: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("swapi: GET %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return fmt.Errorf("swapi: failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("swapi: failed to decode response: %w", err)
	}
	return nil
}
