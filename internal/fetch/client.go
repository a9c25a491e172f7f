// Package fetch retrieves hourly balancing-authority demand from the EIA v2
// API. Results are paginated by the server; the client walks pages with a
// configurable rate limit and retries transient failures.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/FrankLong1/eia-data/internal/timeseries"
)

const regionDataPath = "/electricity/rto/region-data/data/"

// Options parameterise the EIA client.
type Options struct {
	BaseURL    string
	APIKey     string
	PageSize   int
	Timeout    time.Duration
	RateLimit  time.Duration
	MaxRetries int
	UserAgent  string
}

// Client fetches demand series from the EIA API.
type Client struct {
	opts    Options
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewClient constructs an EIA API client.
func NewClient(opts Options, logger zerolog.Logger) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 5000
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 100 * time.Millisecond
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.eia.gov/v2"
	}

	return &Client{
		opts:    opts,
		logger:  logger.With().Str("component", "eia_client").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type apiResponse struct {
	Response struct {
		Data  []apiRow        `json:"data"`
		Total json.RawMessage `json:"total"`
	} `json:"response"`
	Error string `json:"error"`
}

type apiRow struct {
	Period     string   `json:"period"`
	Respondent string   `json:"respondent"`
	Value      apiValue `json:"value"`
}

// apiValue tolerates the API returning demand as either a JSON number or a
// quoted string.
type apiValue float64

func (v *apiValue) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*v = apiValue(0)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse demand value %q: %w", s, err)
	}
	*v = apiValue(f)
	return nil
}

// FetchBA retrieves the hourly demand series for one balancing authority
// over [start, end]. Pages are requested sequentially in period order until
// a short page signals the end of the result set.
func (c *Client) FetchBA(ctx context.Context, ba string, start, end time.Time) ([]timeseries.HourlyRecord, error) {
	if c.opts.APIKey == "" {
		return nil, fmt.Errorf("fetch: EIA API key is required")
	}

	var records []timeseries.HourlyRecord
	offset := 0
	for {
		rows, err := c.fetchPage(ctx, ba, start, end, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch %s at offset %d: %w", ba, offset, err)
		}
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			ts, err := parsePeriod(row.Period)
			if err != nil {
				return nil, err
			}
			records = append(records, timeseries.HourlyRecord{
				BA:        ba,
				Timestamp: ts,
				DemandMW:  float64(row.Value),
			})
		}

		c.logger.Debug().Str("ba", ba).Int("offset", offset).Int("rows", len(rows)).Msg("page fetched")

		if len(rows) < c.opts.PageSize {
			break
		}
		offset += c.opts.PageSize

		if err := c.throttle(ctx); err != nil {
			return nil, err
		}
	}

	c.logger.Info().Str("ba", ba).Int("records", len(records)).Msg("series fetched")
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, ba string, start, end time.Time, offset int) ([]apiRow, error) {
	endpoint := c.baseURL + regionDataPath

	params := url.Values{}
	params.Set("api_key", c.opts.APIKey)
	params.Set("frequency", "hourly")
	params.Set("data[0]", "value")
	params.Set("facets[respondent][]", ba)
	params.Set("facets[type][]", "D")
	params.Set("start", start.Format("2006-01-02")+"T00")
	params.Set("end", end.Format("2006-01-02")+"T23")
	params.Set("sort[0][column]", "period")
	params.Set("sort[0][direction]", "asc")
	params.Set("offset", strconv.Itoa(offset))
	params.Set("length", strconv.Itoa(c.opts.PageSize))

	var lastErr error
	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			c.logger.Warn().Str("ba", ba).Int("attempt", attempt).Err(lastErr).Msg("retrying page fetch")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		rows, retryable, err := c.doPage(ctx, endpoint, params)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) doPage(ctx context.Context, endpoint string, params url.Values) ([]apiRow, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(c.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, fmt.Errorf("api status %d: %s", resp.StatusCode, truncate(payload, 200))
	}

	var parsed apiResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, false, fmt.Errorf("decode api response: %w", err)
	}
	if parsed.Error != "" {
		return nil, false, fmt.Errorf("api error: %s", parsed.Error)
	}
	return parsed.Response.Data, false, nil
}

func (c *Client) throttle(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.opts.RateLimit):
		return nil
	}
}

func parsePeriod(period string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15", time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, period); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("fetch: unparseable period %q", period)
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
