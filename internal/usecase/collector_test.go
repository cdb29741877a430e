package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradeDeck/internal/domain/models"
)

func tick(symbol string, at time.Time, price, volume float64) *models.Tick {
	return &models.Tick{Symbol: symbol, Timestamp: at.Unix(), Price: price, Volume: volume}
}

func TestCandleBuilderAggregatesWithinMinute(t *testing.T) {
	b := NewCandleBuilder()
	base := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

	require.Nil(t, b.Add(tick("AAPL", base, 100, 10)))
	require.Nil(t, b.Add(tick("AAPL", base.Add(10*time.Second), 103, 5)))
	require.Nil(t, b.Add(tick("AAPL", base.Add(30*time.Second), 99, 2)))
	require.Nil(t, b.Add(tick("AAPL", base.Add(59*time.Second), 101, 3)))

	done := b.Add(tick("AAPL", base.Add(time.Minute), 102, 1))
	require.NotNil(t, done)
	assert.Equal(t, base, done.Bucket)
	assert.Equal(t, 100.0, done.Open)
	assert.Equal(t, 103.0, done.High)
	assert.Equal(t, 99.0, done.Low)
	assert.Equal(t, 101.0, done.Close)
	assert.Equal(t, 20.0, done.Volume)
}

func TestCandleBuilderTracksSymbolsIndependently(t *testing.T) {
	b := NewCandleBuilder()
	base := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

	require.Nil(t, b.Add(tick("AAPL", base, 100, 1)))
	require.Nil(t, b.Add(tick("TSLA", base, 200, 1)))

	done := b.Add(tick("AAPL", base.Add(time.Minute), 101, 1))
	require.NotNil(t, done)
	assert.Equal(t, "AAPL", done.Symbol)

	// TSLA's bar is still open.
	flushed := b.Flush()
	assert.Len(t, flushed, 2)
}

func TestCandleBuilderIgnoresLateTicks(t *testing.T) {
	b := NewCandleBuilder()
	base := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

	require.Nil(t, b.Add(tick("AAPL", base.Add(time.Minute), 100, 1)))
	// A tick from the previous minute opens a stale bucket but must not
	// emit the newer bar as completed.
	assert.Nil(t, b.Add(tick("AAPL", base, 99, 1)))
}

func TestCandleBuilderFlush(t *testing.T) {
	b := NewCandleBuilder()
	base := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

	require.Nil(t, b.Add(tick("AAPL", base, 100, 1)))
	flushed := b.Flush()
	require.Len(t, flushed, 1)
	assert.Equal(t, "AAPL", flushed[0].Symbol)
	assert.Empty(t, b.Flush())
}

// flakyStream hands out closed channels on its first Read and fails a
// configurable number of Reconnect calls before recovering.
type flakyStream struct {
	mu         sync.Mutex
	failBefore int
	reconnects int
	reads      int
	ticks      chan *models.Tick
	errs       chan error
}

func (s *flakyStream) Connect(context.Context) error   { return nil }
func (s *flakyStream) Subscribe(context.Context) error { return nil }

func (s *flakyStream) Read(context.Context) (<-chan *models.Tick, <-chan error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.reads == 1 {
		dead := make(chan *models.Tick)
		deadErrs := make(chan error)
		close(dead)
		close(deadErrs)
		return dead, deadErrs
	}
	return s.ticks, s.errs
}

func (s *flakyStream) Reconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	if s.reconnects <= s.failBefore {
		return errors.New("dial upstream: connection refused")
	}
	return nil
}

func (s *flakyStream) Close() error      { return nil }
func (s *flakyStream) IsConnected() bool { return true }

func (s *flakyStream) counts() (reconnects, reads int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconnects, s.reads
}

func TestCollectorRecoversAfterFailedReconnects(t *testing.T) {
	st := &flakyStream{
		failBefore: 2,
		ticks:      make(chan *models.Tick, 1),
		errs:       make(chan error),
	}
	col := NewTickCollector(st, NewCandleBuilder(), &stubHistory{}, &capturePublisher{}, testLogger(t))
	col.retryDelay = time.Millisecond
	col.maxRetryDelay = 4 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, col.Start(ctx))

	// Both failed attempts back off and a third re-acquires channels.
	require.Eventually(t, func() bool {
		reconnects, reads := st.counts()
		return reconnects == 3 && reads == 2
	}, 2*time.Second, 5*time.Millisecond)

	st.ticks <- tick("AAPL", time.Now(), 100, 1)
	require.Eventually(t, func() bool {
		return len(st.ticks) == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCollectorReconnectStopsOnCancel(t *testing.T) {
	st := &flakyStream{failBefore: 1 << 30}
	col := NewTickCollector(st, NewCandleBuilder(), &stubHistory{}, &capturePublisher{}, testLogger(t))
	col.retryDelay = time.Millisecond
	col.maxRetryDelay = 4 * time.Millisecond

	dead := make(chan *models.Tick)
	deadErrs := make(chan error)
	close(dead)
	close(deadErrs)

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		col.consume(ctx, dead, deadErrs)
		close(finished)
	}()

	require.Eventually(t, func() bool {
		reconnects, _ := st.counts()
		return reconnects >= 2
	}, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("consume kept running after cancellation")
	}
}
