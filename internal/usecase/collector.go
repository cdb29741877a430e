package usecase

import (
	"context"
	"sync"
	"time"

	"TradeDeck/internal/domain/models"
	drepo "TradeDeck/internal/domain/repository"
	"TradeDeck/pkg/logger"
)

// CandleBuilder aggregates ticks into one-minute OHLCV bars per symbol.
type CandleBuilder struct {
	mu   sync.Mutex
	open map[string]*models.Candle
}

func NewCandleBuilder() *CandleBuilder {
	return &CandleBuilder{open: make(map[string]*models.Candle)}
}

// Add folds a tick into its minute bucket and returns the completed bar
// when the tick opens a new bucket.
func (b *CandleBuilder) Add(t *models.Tick) *models.Candle {
	bucket := time.Unix(t.Timestamp, 0).UTC().Truncate(time.Minute)

	b.mu.Lock()
	defer b.mu.Unlock()

	cur, ok := b.open[t.Symbol]
	if ok && bucket.Before(cur.Bucket) {
		// late tick from an already rolled-over bucket
		return nil
	}
	if !ok || !cur.Bucket.Equal(bucket) {
		b.open[t.Symbol] = &models.Candle{
			Bucket: bucket,
			Symbol: t.Symbol,
			Open:   t.Price,
			High:   t.Price,
			Low:    t.Price,
			Close:  t.Price,
			Volume: t.Volume,
		}
		if ok && cur.Bucket.Before(bucket) {
			return cur
		}
		return nil
	}

	if t.Price > cur.High {
		cur.High = t.Price
	}
	if t.Price < cur.Low {
		cur.Low = t.Price
	}
	cur.Close = t.Price
	cur.Volume += t.Volume
	return nil
}

// Flush returns and clears every open bar. Used at shutdown so partial
// bars are not lost.
func (b *CandleBuilder) Flush() []models.Candle {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Candle, 0, len(b.open))
	for _, c := range b.open {
		out = append(out, *c)
	}
	b.open = make(map[string]*models.Candle)
	return out
}

// TickCollector consumes the realtime stream, builds candles into the
// history store, and forwards tick batches to the publisher.
type TickCollector struct {
	stream        drepo.MarketStream
	builder       *CandleBuilder
	store         drepo.HistoryStore
	publisher     drepo.SignalPublisher
	batchSize     int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	log           *logger.Logger
}

func NewTickCollector(stream drepo.MarketStream, builder *CandleBuilder, store drepo.HistoryStore, publisher drepo.SignalPublisher, log *logger.Logger) *TickCollector {
	return &TickCollector{
		stream:        stream,
		builder:       builder,
		store:         store,
		publisher:     publisher,
		batchSize:     256,
		retryDelay:    time.Second,
		maxRetryDelay: 30 * time.Second,
		log:           log,
	}
}

func (c *TickCollector) IsConnected() bool { return c.stream.IsConnected() }

func (c *TickCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	ticks, errs := c.stream.Read(ctx)
	go c.consume(ctx, ticks, errs)
	return nil
}

func (c *TickCollector) consume(ctx context.Context, ticks <-chan *models.Tick, errs <-chan error) {
	batch := make([]*models.Tick, 0, c.batchSize)
	flush := time.NewTicker(time.Second)
	defer flush.Stop()

	publish := func() {
		if len(batch) == 0 {
			return
		}
		if err := c.publisher.PublishTicks(ctx, batch); err != nil {
			c.log.Warn("publish ticks failed", logger.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			publish()
			return
		case err, open := <-errs:
			if open && err == nil {
				continue
			}
			if open {
				c.log.Warn("stream error, reconnecting", logger.Error(err))
			} else {
				c.log.Warn("stream closed, reconnecting")
			}
			ticks, errs = c.reconnect(ctx)
			if errs == nil {
				publish()
				return
			}
		case <-flush.C:
			publish()
		case t, open := <-ticks:
			if !open {
				// closed by the read goroutine; the errs branch
				// drives the reconnect
				ticks = nil
				continue
			}
			if t == nil {
				continue
			}
			if done := c.builder.Add(t); done != nil {
				if err := c.store.StoreCandles(ctx, []models.Candle{*done}); err != nil {
					c.log.Warn("store candle failed",
						logger.String("symbol", done.Symbol), logger.Error(err))
				}
			}
			batch = append(batch, t)
			if len(batch) >= c.batchSize {
				publish()
			}
		}
	}
}

// reconnect retries the stream connection with exponential backoff
// until it succeeds or ctx is done, then re-acquires the read
// channels. Returns nil channels on cancellation.
func (c *TickCollector) reconnect(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	delay := c.retryDelay
	for {
		err := c.stream.Reconnect(ctx)
		if err == nil {
			return c.stream.Read(ctx)
		}
		c.log.Error("stream reconnect failed",
			logger.Error(err), logger.Duration("retry_in", delay))

		select {
		case <-ctx.Done():
			return nil, nil
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.maxRetryDelay {
			delay = c.maxRetryDelay
		}
	}
}

// Shutdown closes the stream and persists any partial bars.
func (c *TickCollector) Shutdown(ctx context.Context) error {
	err := c.stream.Close()
	if remaining := c.builder.Flush(); len(remaining) > 0 {
		if serr := c.store.StoreCandles(ctx, remaining); serr != nil {
			c.log.Warn("flush candles failed", logger.Error(serr))
		}
	}
	return err
}
