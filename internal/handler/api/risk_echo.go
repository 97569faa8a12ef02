package api

import (
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"

	models "RiskGate/internal/domain/models"
	domrepo "RiskGate/internal/domain/repository"
	icache "RiskGate/internal/service/cache"
	"RiskGate/internal/service/ratelimit"
	"RiskGate/internal/usecase"
	xhttp "RiskGate/pkg/http"
	xlogger "RiskGate/pkg/logger"
)

// RiskEchoHandler exposes the risk pipeline over Echo-based HTTP handlers.
type RiskEchoHandler struct {
	logger   *xlogger.Logger
	pipeline *usecase.RiskPipeline
	bars     domrepo.BarStore
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
}

func NewRiskEchoHandler(logger *xlogger.Logger, pipeline *usecase.RiskPipeline) *RiskEchoHandler {
	return &RiskEchoHandler{logger: logger, pipeline: pipeline, rl: ratelimit.New()}
}

// SetCache injects a byte cache for analysis responses.
func (h *RiskEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

// SetBarStore enables the raw candle endpoint.
func (h *RiskEchoHandler) SetBarStore(b domrepo.BarStore) { h.bars = b }

func (h *RiskEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/risk", h.Risk)
	g.GET("/gate", h.Gate)
	g.GET("/candles", h.Candles)
}

// Risk runs the full pipeline for a symbol and returns the analysis.
func (h *RiskEchoHandler) Risk(c echo.Context) error {
	req := &models.RiskRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)

	if !h.rl.Allow(c.RealIP()+":risk", 5, 2) {
		h.logger.Warn("risk rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.TooManyRequestsResponse(c)
	}

	cacheKey := "risk:" + req.Symbol + ":" + string(tf)
	if h.cache != nil {
		if b, ok, err := h.cache.GetBytes(cacheKey); err != nil {
			h.logger.Warn("risk cache_get_error", xlogger.Error(err))
		} else if ok {
			var cached models.Analysis
			if err := json.Unmarshal(b, &cached); err == nil {
				return xhttp.SuccessResponse(c, cached)
			}
		}
	}

	res, err := h.pipeline.RunWith(c.Request().Context(), req.Symbol, req.N, tf)
	if err != nil {
		h.logger.Error("risk pipeline error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if h.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			if err := h.cache.SetBytes(cacheKey, b, 30*time.Second); err != nil {
				h.logger.Warn("risk cache_set_error", xlogger.Error(err))
			}
		}
	}
	return xhttp.SuccessResponse(c, res)
}

// Gate runs the pipeline for a symbol and returns only the behavior gate.
func (h *RiskEchoHandler) Gate(c echo.Context) error {
	req := &models.GateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.rl.Allow(c.RealIP()+":gate", 5, 2) {
		h.logger.Warn("gate rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.TooManyRequestsResponse(c)
	}

	res, err := h.pipeline.Run(c.Request().Context(), req.Symbol)
	if err != nil {
		h.logger.Error("gate pipeline error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res.BehaviorGate)
}

// Candles returns raw stored candles for inspection and backtesting.
func (h *RiskEchoHandler) Candles(c echo.Context) error {
	if h.bars == nil {
		return xhttp.NotFoundResponse(c, "candle store not configured")
	}
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol required")
	}
	tf := domrepo.NormalizeTimeframe(c.QueryParam("tf"))

	now := time.Now().UTC()
	from := xhttp.ParseTimeDefault(c.QueryParam("from"), now.Add(-time.Hour))
	to := xhttp.ParseTimeDefault(c.QueryParam("to"), now)

	candles, err := h.bars.GetCandles(c.Request().Context(), symbol, from, to, tf)
	if err != nil {
		h.logger.Error("candles query error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, candles, int64(len(candles)))
}
