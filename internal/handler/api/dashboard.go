package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"TradeDeck/internal/domain/models"
	"TradeDeck/internal/service/ratelimit"
	"TradeDeck/internal/usecase"
	xhttp "TradeDeck/pkg/http"
	xlogger "TradeDeck/pkg/logger"
)

// DashboardHandler exposes the dashboard API over Echo.
type DashboardHandler struct {
	logger          *xlogger.Logger
	prices          *usecase.PriceUseCase
	regimes         *usecase.RegimeUseCase
	recommendations *usecase.RecommendationUseCase
	quota           *ratelimit.UpstreamLimiter
	clients         *ratelimit.ClientLimiter
}

func NewDashboardHandler(
	logger *xlogger.Logger,
	prices *usecase.PriceUseCase,
	regimes *usecase.RegimeUseCase,
	recommendations *usecase.RecommendationUseCase,
	quota *ratelimit.UpstreamLimiter,
	clients *ratelimit.ClientLimiter,
) *DashboardHandler {
	return &DashboardHandler{
		logger:          logger,
		prices:          prices,
		regimes:         regimes,
		recommendations: recommendations,
		quota:           quota,
		clients:         clients,
	}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/price", h.Price)
	g.DELETE("/price", h.InvalidatePrice)
	g.GET("/regime", h.Regime)
	g.POST("/recommendation", h.Recommendation)
	g.GET("/quota", h.Quota)
}

// Price returns the quorum-verified price for a symbol. An absent
// price is a 404, not a server error.
func (h *DashboardHandler) Price(c echo.Context) error {
	req := &models.PriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	price, ok, err := h.prices.VerifiedPrice(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("price usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("price resolution failed").WithError(err))
	}
	if !ok {
		return xhttp.NotFoundResponse(c, map[string]string{
			"symbol": req.Symbol,
			"reason": "no provider returned a usable sample",
		})
	}
	return xhttp.SuccessResponse(c, price)
}

func (h *DashboardHandler) Regime(c echo.Context) error {
	req := &models.RegimeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.regimes.Detect(c.Request().Context(), req.Symbol, req.Bars)
	if err != nil {
		h.logger.Error("regime usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("regime detection failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

// InvalidatePrice drops the cached verified price so the next read
// re-resolves against the providers.
func (h *DashboardHandler) InvalidatePrice(c echo.Context) error {
	req := &models.PriceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if err := h.prices.Invalidate(c.Request().Context(), req.Symbol); err != nil {
		h.logger.Error("price invalidate error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("price cache invalidation failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"symbol": req.Symbol})
}

// Recommendation gates a raw model signal into a beginner-safe
// recommendation. Upstream quota exhaustion maps to 429 with a
// Retry-After hint.
func (h *DashboardHandler) Recommendation(c echo.Context) error {
	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	sig := req.ToSignal()
	rec, err := h.recommendations.Recommend(c.Request().Context(), &sig)
	if err != nil {
		var le *ratelimit.LimitError
		switch {
		case errors.As(err, &le):
			return xhttp.TooManyRequestsResponse(c, int(le.RetryAfter.Seconds())+1, map[string]string{
				"window": le.Window,
			})
		case errors.Is(err, usecase.ErrPriceUnavailable):
			return xhttp.NotFoundResponse(c, map[string]string{
				"symbol": sig.Symbol,
				"reason": "no provider returned a usable sample",
			})
		default:
			h.logger.Error("recommendation usecase error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c,
				xhttp.UnavailableError("recommendation temporarily unavailable").
					WithParam("symbol", sig.Symbol).
					WithError(err))
		}
	}
	return xhttp.SuccessResponse(c, rec)
}

// Quota reports upstream window occupancy and client limiter metrics.
func (h *DashboardHandler) Quota(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"upstream": h.quota.Stats(),
		"clients":  h.clients.Metrics(),
	})
}
