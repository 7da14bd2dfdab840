package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/LogViewer/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/LogViewer/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/LogViewer/backend/internal/navigation"
	"github.com/GriffinCanCode/LogViewer/backend/internal/shared/utils"
)

// Navigator is the browsing core the handlers expose.
type Navigator interface {
	ListChildren(ctx context.Context, path string, filter *navigation.Filter) ([]navigation.FsEntry, error)
	Find(ctx context.Context, root string, filter *navigation.Filter, maxDepth int) ([]navigation.FsEntry, error)
	DefaultDirectory() (string, bool)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	nav     Navigator
	tracer  *tracing.Tracer
	metrics *monitoring.Metrics
	logger  *zap.Logger
	version string
}

// NewHandlers creates a new handler set. tracer and metrics may be nil.
func NewHandlers(nav Navigator, tracer *tracing.Tracer, metrics *monitoring.Metrics, logger *zap.Logger, version string) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		nav:     nav,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		version: version,
	}
}

// Health handles the health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"service": "log-viewer",
		"version": h.version,
	}
	if h.metrics != nil {
		body["stats"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// DefaultDirectory returns the directory a client should open first, or a
// null path when the client should show the root list.
func (h *Handlers) DefaultDirectory(c *gin.Context) {
	dir, ok := h.nav.DefaultDirectory()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"path": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": dir})
}

// ListChildren lists a directory, or the roots when path is empty. With a
// text parameter the listing is narrowed to files containing it.
func (h *Handlers) ListChildren(c *gin.Context) {
	path := c.Query("path")
	if err := utils.ValidatePath(path, false); err != nil {
		h.badRequest(c, err)
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	ctx, finish := h.span(c, "navigation.list", path)
	entries, err := h.nav.ListChildren(ctx, path, filter)
	finish(err)
	if err != nil {
		h.navigationError(c, path, err)
		return
	}

	c.JSON(http.StatusOK, listResponse{Path: path, Children: toItems(entries)})
}

// Find searches the subtree under path.
func (h *Handlers) Find(c *gin.Context) {
	path := c.Query("path")
	if err := utils.ValidatePath(path, true); err != nil {
		h.badRequest(c, err)
		return
	}
	depth, err := utils.ParseDepth(c.Query("depth"))
	if err != nil {
		h.badRequest(c, err)
		return
	}
	filter, err := parseFilter(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}

	ctx, finish := h.span(c, "navigation.find", path)
	entries, err := h.nav.Find(ctx, path, filter, depth)
	finish(err)
	if err != nil {
		h.navigationError(c, path, err)
		return
	}

	c.JSON(http.StatusOK, listResponse{Path: path, Children: toItems(entries)})
}

// parseFilter reads text, startDate and endDate. A missing or blank text
// yields no filter.
func parseFilter(c *gin.Context) (*navigation.Filter, error) {
	text := c.Query("text")
	if err := utils.ValidateTerm(text); err != nil {
		return nil, err
	}
	start, err := navigation.ParseDate(c.Query("startDate"))
	if err != nil {
		return nil, err
	}
	end, err := navigation.ParseDate(c.Query("endDate"))
	if err != nil {
		return nil, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, errors.New("endDate must not be before startDate")
	}

	filter := &navigation.Filter{Text: text, StartDate: start, EndDate: end}
	if !filter.Active() {
		return nil, nil
	}
	return filter, nil
}

func (h *Handlers) span(c *gin.Context, name, path string) (context.Context, func(error)) {
	ctx := c.Request.Context()
	if h.tracer == nil {
		return ctx, func(error) {}
	}
	span, ctx := h.tracer.StartSpan(ctx, name)
	span.SetTag("path", path)
	return ctx, func(err error) {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
		h.tracer.Submit(span)
	}
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// navigationError maps the navigation error taxonomy onto status codes.
// Access-denied reasons are shown to the caller as is; I/O details are
// logged but not returned.
func (h *Handlers) navigationError(c *gin.Context, path string, err error) {
	logger := tracing.Logger(c.Request.Context(), h.logger).With(zap.String("path", path), zap.Error(err))

	var deniedErr *navigation.AccessDeniedError
	switch {
	case errors.As(err, &deniedErr):
		logger.Info("Access denied")
		c.JSON(http.StatusForbidden, gin.H{"error": deniedErr.Reason})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug("Listing cancelled")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		logger.Error("Listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read directory"})
	}
}
