package di

import (
	"context"
	"fmt"
	"time"

	"TradeDeck/internal/domain/models"
	"TradeDeck/internal/domain/repository"
	"TradeDeck/internal/handler/api"
	internalrepo "TradeDeck/internal/repository"
	"TradeDeck/internal/service/providers"
	"TradeDeck/internal/service/quorum"
	"TradeDeck/internal/service/ratelimit"
	"TradeDeck/internal/service/stream"
	"TradeDeck/internal/services/analytics"
	"TradeDeck/internal/usecase"
	"TradeDeck/pkg/cache"
	pkgch "TradeDeck/pkg/clickhouse"
	"TradeDeck/pkg/config"
	pkgkafka "TradeDeck/pkg/kafka"
	"TradeDeck/pkg/logger"
	"TradeDeck/pkg/metrics"
	"TradeDeck/pkg/server"
)

// regimeBars is how much history the recommendation pipeline feeds the
// classifier.
const regimeBars = 120

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates a Redis-backed cache when configured, falling
// back to the in-process cache otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Redis.Enabled {
		c, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the
// candle schema exists.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.Schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCandleStore creates the ClickHouse candle history store.
func ProvideCandleStore(chClient *pkgch.Client) repository.HistoryStore {
	return internalrepo.NewClickHouseCandleStore(chClient.DB(), "candles_1m")
}

// ProvidePublisher creates the Kafka signal publisher, or a no-op one
// when Kafka is disabled.
func ProvidePublisher(cfg *config.Config) (repository.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NewNoopPublisher(), nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.SignalsTopic, cfg.Kafka.TicksTopic), nil
}

// ProvideUpstreamLimiter creates the shared upstream quota limiter.
func ProvideUpstreamLimiter(cfg *config.Config, m repository.Metrics) *ratelimit.UpstreamLimiter {
	return ratelimit.NewUpstreamLimiter(
		cfg.Quota.MaxRequestsPerMinute,
		cfg.Quota.MaxRequestsPerDay,
		repository.SystemClock{},
		m,
	)
}

// ProvideClientLimiter creates the per-identity inbound limiter.
func ProvideClientLimiter(cfg *config.Config, m repository.Metrics) *ratelimit.ClientLimiter {
	return ratelimit.NewClientLimiter(
		cfg.ClientLimiter.Limit,
		cfg.ClientLimiter.Interval,
		cfg.ClientLimiter.MaxEntries,
		repository.SystemClock{},
		m,
	)
}

// ProvideDataProviders assembles the provider set, each gated by the
// shared upstream quota.
func ProvideDataProviders(cfg *config.Config, limiter *ratelimit.UpstreamLimiter) []repository.DataProvider {
	timeout := cfg.Providers.RequestTimeout
	return []repository.DataProvider{
		providers.WithQuota(providers.NewFinnhub(cfg.Providers.APIKey, timeout), limiter),
		providers.WithQuota(providers.NewAlphaVantage(cfg.Providers.APIKey, timeout), limiter),
	}
}

// ProvideResolver creates the price quorum resolver.
func ProvideResolver(ps []repository.DataProvider, m repository.Metrics, log *logger.Logger) *quorum.Resolver {
	return quorum.NewResolver(ps, m, log)
}

// ProvidePriceUseCase creates the verified-price use case.
func ProvidePriceUseCase(resolver *quorum.Resolver, c cache.Service, cfg *config.Config, m repository.Metrics, log *logger.Logger) *usecase.PriceUseCase {
	return usecase.NewPriceUseCase(resolver, c, cfg.Cache.PriceTTL, m, log)
}

// ProvideRegimeUseCase creates the regime classification use case.
func ProvideRegimeUseCase(store repository.HistoryStore, c cache.Service, cfg *config.Config, log *logger.Logger) *usecase.RegimeUseCase {
	return usecase.NewRegimeUseCase(store, analytics.NewRegimeClassifier(), c, cfg.Cache.RegimeTTL, log)
}

// ProvideBeginnerConfig maps configuration onto the gate's view of it.
func ProvideBeginnerConfig(cfg *config.Config) models.BeginnerModeConfig {
	return models.BeginnerModeConfig{
		Enabled:                  cfg.Beginner.Enabled,
		ConfidenceThreshold:      cfg.Beginner.ConfidenceThreshold,
		AutoRiskEnabled:          cfg.Beginner.AutoRiskEnabled,
		DefaultStopLossPercent:   cfg.Beginner.DefaultStopLossPercent,
		DefaultTakeProfitPercent: cfg.Beginner.DefaultTakeProfitPercent,
		MinIndicatorAgreement:    cfg.Beginner.MinIndicatorAgreement,
		MinExpectedValue:         cfg.Beginner.MinExpectedValue,
		Capital:                  cfg.Beginner.Capital,
		RiskPerTradePercent:      cfg.Beginner.RiskPerTradePercent,
	}
}

// ProvideRecommendationUseCase creates the full gating pipeline.
func ProvideRecommendationUseCase(
	prices *usecase.PriceUseCase,
	regimes *usecase.RegimeUseCase,
	publisher repository.SignalPublisher,
	beginner models.BeginnerModeConfig,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.RecommendationUseCase {
	return usecase.NewRecommendationUseCase(
		prices,
		regimes,
		analytics.NewConfidenceScorer(),
		analytics.NewBeginnerGate(),
		publisher,
		beginner,
		regimeBars,
		m,
		log,
	)
}

// ProvideTickCollector creates the realtime collector, or nil when the
// stream is disabled.
func ProvideTickCollector(cfg *config.Config, store repository.HistoryStore, publisher repository.SignalPublisher, log *logger.Logger) *usecase.TickCollector {
	if !cfg.Stream.Enabled {
		return nil
	}
	s := stream.New(
		cfg.Providers.APIKey,
		cfg.Stream.WebSocketURL,
		cfg.Providers.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		log,
	)
	return usecase.NewTickCollector(s, usecase.NewCandleBuilder(), store, publisher, log)
}

// ProvideDashboardHandler creates the Echo handler.
func ProvideDashboardHandler(
	log *logger.Logger,
	prices *usecase.PriceUseCase,
	regimes *usecase.RegimeUseCase,
	recommendations *usecase.RecommendationUseCase,
	quota *ratelimit.UpstreamLimiter,
	clients *ratelimit.ClientLimiter,
) *api.DashboardHandler {
	return api.NewDashboardHandler(log, prices, regimes, recommendations, quota, clients)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	handler *api.DashboardHandler,
	collector *usecase.TickCollector,
	clients *ratelimit.ClientLimiter,
	chClient *pkgch.Client,
	c cache.Service,
	publisher repository.SignalPublisher,
	log *logger.Logger,
) *server.App {
	return server.New(cfg, handler, collector, clients, chClient, c, publisher, log)
}
