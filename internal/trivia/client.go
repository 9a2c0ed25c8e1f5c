package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"

	"quizely-service/internal/domain"
)

// Record is one normalized question record from the provider, entities
// already decoded, display order not yet assigned.
type Record struct {
	Text             string
	CorrectAnswer    string
	IncorrectAnswers []string
}

// Fetcher obtains a batch of raw question records from the trivia provider.
type Fetcher interface {
	Fetch(ctx context.Context, count int) ([]Record, error)
}

// Client talks to an Open Trivia DB compatible endpoint. It performs exactly
// one request per Fetch; failures propagate to the caller with no retry.
type Client struct {
	http       *http.Client
	baseURL    string
	category   int
	difficulty string
}

func NewClient(httpClient *http.Client, baseURL string, category int, difficulty string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:       httpClient,
		baseURL:    baseURL,
		category:   category,
		difficulty: difficulty,
	}
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []apiQuestion `json:"results"`
}

type apiQuestion struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Fetch requests count questions for the configured category/difficulty.
// Transport failures wrap domain.ErrFetchFailed; unusable payloads wrap
// domain.ErrBadFormat.
func (c *Client) Fetch(ctx context.Context, count int) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(count), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrFetchFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", domain.ErrBadFormat, err)
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("%w: provider code %d", domain.ErrBadFormat, payload.ResponseCode)
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("%w: empty result set", domain.ErrBadFormat)
	}

	records := make([]Record, 0, len(payload.Results))
	for _, q := range payload.Results {
		rec := Record{
			Text:             html.UnescapeString(q.Question),
			CorrectAnswer:    html.UnescapeString(q.CorrectAnswer),
			IncorrectAnswers: make([]string, 0, len(q.IncorrectAnswers)),
		}
		for _, ans := range q.IncorrectAnswers {
			rec.IncorrectAnswers = append(rec.IncorrectAnswers, html.UnescapeString(ans))
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Client) requestURL(count int) string {
	v := url.Values{}
	v.Set("amount", strconv.Itoa(count))
	v.Set("category", strconv.Itoa(c.category))
	v.Set("difficulty", c.difficulty)
	v.Set("type", "multiple")
	return c.baseURL + "/api.php?" + v.Encode()
}
