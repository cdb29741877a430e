package providers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"TradeDeck/internal/domain/models"
	apphttp "TradeDeck/pkg/http"
)

const finnhubBaseURL = "https://finnhub.io/api/v1"

// Finnhub fetches spot quotes from the Finnhub REST API.
type Finnhub struct {
	apiKey string
	client *apphttp.Client
}

func NewFinnhub(apiKey string, timeout time.Duration) *Finnhub {
	return &Finnhub{apiKey: apiKey, client: apphttp.NewClient(apphttp.WithTimeout(timeout))}
}

func (f *Finnhub) Name() string { return "finnhub" }

type finnhubQuote struct {
	Current float64 `json:"c"`
	High    float64 `json:"h"`
	Low     float64 `json:"l"`
	Open    float64 `json:"o"`
	PrevDay float64 `json:"pc"`
	Taken   int64   `json:"t"`
}

// FetchQuote returns the latest quote as a single synthetic bar. A zero
// current price means Finnhub has no data for the symbol.
func (f *Finnhub) FetchQuote(ctx context.Context, symbol string) (*models.Candle, error) {
	var q finnhubQuote
	err := f.client.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: http.MethodGet,
		URL:    finnhubBaseURL + "/quote",
		QueryParams: map[string]string{
			"symbol": symbol,
			"token":  f.apiKey,
		},
	}, &q)
	if err != nil {
		return nil, fmt.Errorf("finnhub quote %s: %w", symbol, err)
	}
	if q.Current <= 0 {
		return nil, fmt.Errorf("finnhub quote %s: no data", symbol)
	}
	return &models.Candle{
		Bucket: time.Unix(q.Taken, 0).UTC(),
		Symbol: symbol,
		Open:   q.Open,
		High:   q.High,
		Low:    q.Low,
		Close:  q.Current,
	}, nil
}
