package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// NewQuoteServer starts an httptest server that mimics the quote provider's
// chart API. Each entry in prices maps a symbol to the closing price the
// server reports for it; unknown symbols get a provider-style error payload.
// The server is shut down automatically when the test finishes.
//
// Example usage:
//
//	server := testutil.NewQuoteServer(t, map[string]float64{"INFY": 1520.50})
//	priceService := testutil.NewTestPriceService(t, db, server.URL)
func NewQuoteServer(t *testing.T, prices map[string]float64) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		price, ok := prices[symbol]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"chart":{"result":[],"error":"no data found for symbol %s"}}`, symbol)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck
		w.Write(QuoteChartJSON(symbol, price, 5))
	}))
	t.Cleanup(server.Close)

	return server
}

// QuoteChartJSON builds a provider chart response for one symbol with the
// given number of daily data points, the last of which closes at price.
// Earlier days close slightly lower so LatestClose is distinguishable.
func QuoteChartJSON(symbol string, price float64, days int) []byte {
	now := time.Now().UTC()
	yesterday := time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)

	timestamps := make([]int64, days)
	opens := make([]float64, days)
	highs := make([]float64, days)
	lows := make([]float64, days)
	closes := make([]float64, days)
	volumes := make([]int64, days)

	for i := 0; i < days; i++ {
		date := yesterday.AddDate(0, 0, -days+i+1)
		timestamps[i] = date.Unix()

		dayClose := price - float64(days-1-i)*0.25
		opens[i] = dayClose - 0.10
		highs[i] = dayClose + 0.50
		lows[i] = dayClose - 0.50
		closes[i] = dayClose
		volumes[i] = int64(1000000 + i*10000)
	}

	payload := map[string]any{
		"chart": map[string]any{
			"result": []map[string]any{
				{
					"meta": map[string]any{
						"currency":     "INR",
						"symbol":       symbol,
						"exchangeName": "NSE",
						"longName":     symbol + " Test Security",
					},
					"timestamp": timestamps,
					"indicators": map[string]any{
						"quote": []map[string]any{
							{
								"open":   opens,
								"high":   highs,
								"low":    lows,
								"close":  closes,
								"volume": volumes,
							},
						},
					},
				},
			},
			"error": nil,
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return data
}
