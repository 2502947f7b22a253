package quote

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches market quotes from the configured provider.
// It wraps an HTTP client and knows how to parse the provider's
// chart-style responses into price series.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a quote client. An empty baseURL selects the default
// provider endpoint; token may be empty for unauthenticated access.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    baseURL,
		token:      token,
	}
}

// QueryFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// This is the cheapest way to obtain the latest available closing price.
func (c *Client) QueryFiveDaySymbol(symbol string) (Response, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=5d", c.baseURL, symbol)
	result, err := c.query(url)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	return result, nil
}

// QuerySymbolByDateRange fetches daily price data for a symbol within an
// inclusive date range, for historical backfills.
func (c *Client) QuerySymbolByDateRange(symbol string, startDate, endDate time.Time) (Response, error) {
	url := fmt.Sprintf(
		"%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		symbol,
		startDate.Unix(),
		endDate.Unix(),
	)
	result, err := c.query(url)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	return result, nil
}

// ParseChart converts a raw provider response into a structured price chart.
// Returns an error when the response carries no usable price series or the
// timestamp and close arrays disagree in length.
func (c *Client) ParseChart(raw Response) (PriceChart, error) {
	result := raw.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}
	if len(result.Indicators.Quote[0].Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	// Only the close series is guaranteed to match the timestamps; the
	// provider sometimes truncates the secondary series, so those are
	// copied only where present.
	series := result.Indicators.Quote[0]
	indicators := make([]Indicators, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		indicators[i].Date = time.Unix(ts, 0).UTC()
		indicators[i].PriceClose = series.Close[i]
		if i < len(series.Open) {
			indicators[i].PriceOpen = series.Open[i]
		}
		if i < len(series.Volume) {
			indicators[i].Volume = series.Volume[i]
		}
		if i < len(series.High) {
			indicators[i].PriceHigh = series.High[i]
		}
		if i < len(series.Low) {
			indicators[i].PriceLow = series.Low[i]
		}
	}

	return PriceChart{
		Symbol:       result.Meta.Symbol,
		Currency:     result.Meta.Currency,
		ExchangeName: result.Meta.ExchangeName,
		LongName:     result.Meta.LongName,
		Indicators:   indicators,
	}, nil
}

// LatestClose returns the most recent closing price in the chart.
func (c PriceChart) LatestClose() (Indicators, bool) {
	if len(c.Indicators) == 0 {
		return Indicators{}, false
	}
	return c.Indicators[len(c.Indicators)-1], true
}

// GetIndicatorForDate searches the chart for price data on a specific day.
// Both dates are truncated to midnight UTC before comparison.
func (c PriceChart) GetIndicatorForDate(target time.Time) (Indicators, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	for _, ind := range c.Indicators {
		if ind.Date.UTC().Truncate(24 * time.Hour).Equal(targetDay) {
			return ind, true
		}
	}
	return Indicators{}, false
}

// query executes one HTTP request against the provider and decodes the
// chart response, surfacing provider-reported errors.
func (c *Client) query(url string) (Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("quote provider error: %s", *response.Chart.Error)
	}

	return response, nil
}
