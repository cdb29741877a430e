package quorum

import (
	"context"
	"sort"
	"sync"

	"TradeDeck/internal/domain/models"
	"TradeDeck/internal/domain/repository"
	"TradeDeck/pkg/logger"
)

// MaxDeviation is the relative distance from the reference price at
// which a provider sample is discarded as an outlier.
const MaxDeviation = 0.05

// Resolver fans a quote request out to every configured provider and
// reduces the surviving samples to one verified price.
type Resolver struct {
	providers []repository.DataProvider
	metrics   repository.Metrics
	log       *logger.Logger
}

func NewResolver(providers []repository.DataProvider, metrics repository.Metrics, log *logger.Logger) *Resolver {
	return &Resolver{providers: providers, metrics: metrics, log: log}
}

// Resolve queries all providers concurrently and returns the verified
// price for symbol. ok is false when no provider returned a usable
// sample; that is an absent value, not an error.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (price float64, ok bool) {
	samples := r.collect(ctx, symbol)
	r.metrics.RecordQuorumSamples(symbol, len(samples))
	if len(samples) == 0 {
		r.log.Warn("no provider samples", logger.String("symbol", symbol))
		return 0, false
	}

	price = verify(prices(samples))
	r.metrics.RecordVerifiedPrice(symbol, price)
	return price, true
}

func (r *Resolver) collect(ctx context.Context, symbol string) []models.PriceSample {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		samples []models.PriceSample
	)
	for _, p := range r.providers {
		wg.Add(1)
		go func(p repository.DataProvider) {
			defer wg.Done()
			candle, err := p.FetchQuote(ctx, symbol)
			if err != nil {
				r.metrics.RecordProviderError(p.Name())
				r.log.Warn("provider fetch failed",
					logger.String("provider", p.Name()),
					logger.String("symbol", symbol),
					logger.Error(err))
				return
			}
			if candle == nil || candle.Close <= 0 {
				return
			}
			mu.Lock()
			samples = append(samples, models.PriceSample{Provider: p.Name(), Symbol: symbol, Price: candle.Close})
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return samples
}

// verify sorts the samples, takes the element at index len/2 as the
// reference (the upper of the two middle elements for even counts),
// drops anything MaxDeviation or further from it, and returns the mean
// of what remains. A lone sample is returned as-is.
func verify(ps []float64) float64 {
	if len(ps) == 1 {
		return ps[0]
	}
	sort.Float64s(ps)
	ref := ps[len(ps)/2]

	var sum float64
	var n int
	for _, p := range ps {
		if deviation(p, ref) >= MaxDeviation {
			continue
		}
		sum += p
		n++
	}
	// The reference always survives its own filter, so n >= 1.
	return sum / float64(n)
}

func deviation(p, ref float64) float64 {
	d := (p - ref) / ref
	if d < 0 {
		return -d
	}
	return d
}

func prices(samples []models.PriceSample) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		out = append(out, s.Price)
	}
	return out
}
