package providers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"TradeDeck/internal/domain/models"
	apphttp "TradeDeck/pkg/http"
)

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// AlphaVantage fetches spot quotes from the Alpha Vantage GLOBAL_QUOTE
// endpoint. All numeric fields arrive as strings.
type AlphaVantage struct {
	apiKey string
	client *apphttp.Client
}

func NewAlphaVantage(apiKey string, timeout time.Duration) *AlphaVantage {
	return &AlphaVantage{apiKey: apiKey, client: apphttp.NewClient(apphttp.WithTimeout(timeout))}
}

func (a *AlphaVantage) Name() string { return "alphavantage" }

type avEnvelope struct {
	Quote avQuote `json:"Global Quote"`
}

type avQuote struct {
	Symbol string `json:"01. symbol"`
	Open   string `json:"02. open"`
	High   string `json:"03. high"`
	Low    string `json:"04. low"`
	Price  string `json:"05. price"`
	Volume string `json:"06. volume"`
	Day    string `json:"07. latest trading day"`
}

func (a *AlphaVantage) FetchQuote(ctx context.Context, symbol string) (*models.Candle, error) {
	var env avEnvelope
	err := a.client.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: http.MethodGet,
		URL:    alphaVantageBaseURL,
		QueryParams: map[string]string{
			"function": "GLOBAL_QUOTE",
			"symbol":   symbol,
			"apikey":   a.apiKey,
		},
	}, &env)
	if err != nil {
		return nil, fmt.Errorf("alphavantage quote %s: %w", symbol, err)
	}
	if env.Quote.Price == "" {
		return nil, fmt.Errorf("alphavantage quote %s: no data", symbol)
	}

	price, err := strconv.ParseFloat(env.Quote.Price, 64)
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("alphavantage quote %s: bad price %q", symbol, env.Quote.Price)
	}

	c := &models.Candle{Symbol: symbol, Close: price}
	c.Open, _ = strconv.ParseFloat(env.Quote.Open, 64)
	c.High, _ = strconv.ParseFloat(env.Quote.High, 64)
	c.Low, _ = strconv.ParseFloat(env.Quote.Low, 64)
	c.Volume, _ = strconv.ParseFloat(env.Quote.Volume, 64)
	if day, derr := time.Parse("2006-01-02", env.Quote.Day); derr == nil {
		c.Bucket = day
	}
	return c, nil
}
