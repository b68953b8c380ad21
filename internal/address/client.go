// Package address suggests free-text addresses for a partial input using
// the Google Places Autocomplete API. Only the chosen description string
// is ever stored on a job.
package address

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MinInputLen is the shortest input that triggers a lookup.
const MinInputLen = 3

// ErrNoAPIKey is returned when the client has no key to send.
var ErrNoAPIKey = errors.New("places API key is not configured")

// Suggestion is one place prediction.
type Suggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

type autocompleteResponse struct {
	Predictions  []Suggestion `json:"predictions"`
	Status       string       `json:"status"`
	ErrorMessage string       `json:"error_message"`
}

// Client is a thin HTTP client for the Places Autocomplete endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	country    string
	httpClient *http.Client
}

// NewClient creates a Places client. baseURL is the API root, e.g.
// https://maps.googleapis.com/maps/api/place; country restricts
// suggestions (e.g. "au") and may be empty.
func NewClient(baseURL, apiKey, country string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		country: strings.ToLower(strings.TrimSpace(country)),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Suggest returns address predictions for input. Inputs shorter than
// MinInputLen return no suggestions without a request.
func (c *Client) Suggest(ctx context.Context, input string) ([]Suggestion, error) {
	input = strings.TrimSpace(input)
	if len([]rune(input)) < MinInputLen {
		return nil, nil
	}
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("input", input)
	q.Set("types", "address")
	q.Set("key", c.apiKey)
	if c.country != "" {
		q.Set("components", "country:"+c.country)
	}
	endpoint := c.baseURL + "/autocomplete/json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing places request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from places: %s", resp.StatusCode, string(body))
	}

	var out autocompleteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling places response: %w", err)
	}

	switch out.Status {
	case "OK":
		return out.Predictions, nil
	case "ZERO_RESULTS":
		return nil, nil
	default:
		if out.ErrorMessage != "" {
			return nil, fmt.Errorf("places API error %s: %s", out.Status, out.ErrorMessage)
		}
		return nil, fmt.Errorf("places API error %s", out.Status)
	}
}

// Descriptions returns just the description strings.
func Descriptions(s []Suggestion) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = v.Description
	}
	return out
}
