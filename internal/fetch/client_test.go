package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger { return zerolog.Nop() }

func testClient(baseURL string, pageSize, retries int) *Client {
	return NewClient(Options{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		PageSize:   pageSize,
		Timeout:    time.Second,
		RateLimit:  time.Millisecond,
		MaxRetries: retries,
		UserAgent:  "test",
	}, noopLogger())
}

func pageHandler(t *testing.T, rows [][]map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("missing api_key parameter")
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		length, _ := strconv.Atoi(r.URL.Query().Get("length"))
		page := offset / length
		data := []map[string]any{}
		if page < len(rows) {
			data = append(data, rows[page]...)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": map[string]any{"data": data},
		})
	}
}

func TestFetchBAPagination(t *testing.T) {
	pages := [][]map[string]any{
		{
			{"period": "2024-01-01T00", "respondent": "PJM", "value": 81000.0},
			{"period": "2024-01-01T01", "respondent": "PJM", "value": "79500"},
		},
		{
			{"period": "2024-01-01T02", "respondent": "PJM", "value": 78250.5},
		},
	}
	srv := httptest.NewServer(pageHandler(t, pages))
	defer srv.Close()

	c := testClient(srv.URL, 2, 0)
	records, err := c.FetchBA(context.Background(), "PJM", mustDate("2024-01-01"), mustDate("2024-01-01"))
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[1].DemandMW != 79500 {
		t.Errorf("string-typed value parsed as %v, want 79500", records[1].DemandMW)
	}
	want := time.Date(2024, time.January, 1, 2, 0, 0, 0, time.UTC)
	if !records[2].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", records[2].Timestamp, want)
	}
}

func TestFetchBARetriesServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"response":{"data":[{"period":"2024-01-01T00","respondent":"MISO","value":65000}]}}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5000, 2)
	records, err := c.FetchBA(context.Background(), "MISO", mustDate("2024-01-01"), mustDate("2024-01-01"))
	if err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("server called %d times, want 2", calls)
	}
	if len(records) != 1 || records[0].DemandMW != 65000 {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestFetchBANoRetryOnBadRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5000, 3)
	if _, err := c.FetchBA(context.Background(), "PJM", mustDate("2024-01-01"), mustDate("2024-01-01")); err == nil {
		t.Fatal("expected error for HTTP 400")
	}
	if calls != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 4xx)", calls)
	}
}

func TestFetchBARequiresAPIKey(t *testing.T) {
	c := NewClient(Options{}, noopLogger())
	if _, err := c.FetchBA(context.Background(), "PJM", mustDate("2024-01-01"), mustDate("2024-01-01")); err == nil {
		t.Fatal("expected error without API key")
	}
}

func mustDate(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}
