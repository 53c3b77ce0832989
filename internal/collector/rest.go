package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SwingScanner/internal/model"
)

// RESTFetcher implements Fetcher against a JSON bar endpoint:
// GET {base}/api/v1/bars/daily?symbol=X[&from=YYYY-MM-DD&to=YYYY-MM-DD]
// answering with an array of {timestamp, high, low, close, volume}.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	client  *httpClient
}

// NewRESTFetcher creates a REST fetcher; the API key is sent as a bearer token.
func NewRESTFetcher(baseURL, apiKey string, opts ClientOptions) *RESTFetcher {
	return &RESTFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		client:  newHTTPClient(opts),
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

type restBar struct {
	Timestamp int64    `json:"timestamp"`
	High      *float64 `json:"high"`
	Low       *float64 `json:"low"`
	Close     *float64 `json:"close"`
	Volume    float64  `json:"volume"`
}

func (f *RESTFetcher) FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]model.PriceBar, error) {
	q := url.Values{}
	q.Set("symbol", ticker)
	if !from.IsZero() {
		q.Set("from", from.Format(model.DateLayout))
		q.Set("to", to.Format(model.DateLayout))
	}
	endpoint := fmt.Sprintf("%s/api/v1/bars/daily?%s", f.BaseURL, q.Encode())

	header := http.Header{"Accept": {"application/json"}}
	if f.APIKey != "" {
		header.Set("Authorization", "Bearer "+f.APIKey)
	}
	body, err := f.client.get(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("fetch bars %s: %w", ticker, err)
	}

	var raw []restBar
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.PriceBar, 0, len(raw))
	for _, rb := range raw {
		if rb.Close == nil || rb.High == nil || rb.Low == nil {
			continue
		}
		bars = append(bars, model.PriceBar{
			Date:   time.Unix(rb.Timestamp, 0).UTC(),
			Close:  *rb.Close,
			High:   *rb.High,
			Low:    *rb.Low,
			Volume: rb.Volume,
		})
	}
	return cleanBars(bars), nil
}
