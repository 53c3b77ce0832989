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

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	BaseURL string
	// AutoAdjust rescales close, high and low by the adjusted close.
	AutoAdjust bool
	client     *httpClient
}

// NewYahooFetcher creates a Yahoo fetcher. An empty baseURL uses the public endpoint.
func NewYahooFetcher(baseURL string, autoAdjust bool, opts ClientOptions) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooFetcher{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AutoAdjust: autoAdjust,
		client:     newHTTPClient(opts),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
// Quote arrays hold null on holidays and halted sessions.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GMTOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(vs []*float64, i int) (float64, bool) {
	if i >= len(vs) || vs[i] == nil {
		return 0, false
	}
	return *vs[i], true
}

func (f *YahooFetcher) FetchDailyBars(ctx context.Context, ticker string, from, to time.Time) ([]model.PriceBar, error) {
	q := url.Values{}
	q.Set("interval", "1d")
	q.Set("events", "div,splits")
	if from.IsZero() {
		q.Set("range", "max")
	} else {
		q.Set("period1", fmt.Sprint(from.Unix()))
		q.Set("period2", fmt.Sprint(to.Unix()))
	}
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", f.BaseURL, url.PathEscape(ticker), q.Encode())

	body, err := f.client.get(ctx, u, http.Header{"User-Agent": {"Mozilla/5.0"}})
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch %s: %w", ticker, err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if f.AutoAdjust && len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]model.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c, ok1 := at(quote.Close, i)
		h, ok2 := at(quote.High, i)
		l, ok3 := at(quote.Low, i)
		if !ok1 || !ok2 || !ok3 {
			continue // null bars (holidays etc.)
		}
		v, _ := at(quote.Volume, i)
		if a, ok := at(adj, i); ok && c > 0 {
			ratio := a / c
			c, h, l = a, h*ratio, l*ratio
		}
		bars = append(bars, model.PriceBar{
			// session date in exchange local time
			Date:   time.Unix(ts+result.Meta.GMTOffset, 0).UTC(),
			Close:  c,
			High:   h,
			Low:    l,
			Volume: v,
		})
	}
	return cleanBars(bars), nil
}
