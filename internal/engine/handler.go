package engine

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const successMessage = "Operational data updated successfully"

// Handler exposes the tick trigger over HTTP.
type Handler struct {
	engine *Engine
	logger zerolog.Logger

	mu   sync.Mutex
	last *TickReport
}

func NewHandler(engine *Engine, logger zerolog.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/tick/last", h.LastReport)
	e.Any("/tick", h.Tick)
}

// Tick runs one simulation tick. Any method triggers it; OPTIONS is
// answered empty for CORS preflight.
func (h *Handler) Tick(c echo.Context) error {
	if c.Request().Method == http.MethodOptions {
		return c.NoContent(http.StatusOK)
	}

	report, err := h.engine.RunTick(c.Request().Context())
	h.mu.Lock()
	h.last = report
	h.mu.Unlock()

	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": successMessage,
	})
}

// LastReport returns the most recent tick report.
func (h *Handler) LastReport(c echo.Context) error {
	h.mu.Lock()
	last := h.last
	h.mu.Unlock()
	if last == nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "no tick has run yet",
		})
	}
	return c.JSON(http.StatusOK, last)
}
