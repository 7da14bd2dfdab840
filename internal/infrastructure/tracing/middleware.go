package tracing

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/LogViewer/backend/internal/shared/id"
)

// Trace propagation headers.
const (
	HeaderTraceID   = "X-Trace-ID"
	HeaderSpanID    = "X-Span-ID"
	HeaderRequestID = "X-Request-ID"
)

// HTTPMiddleware creates Gin middleware for HTTP tracing. A valid incoming
// X-Trace-ID is continued; anything else starts a new trace.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if traceID := c.GetHeader(HeaderTraceID); traceID != "" && id.IsValid(traceID) {
			ctx = withTraceID(ctx, id.TraceID(traceID))
			if parent := c.GetHeader(HeaderSpanID); parent != "" && id.IsValid(parent) {
				ctx = withSpanID(ctx, id.SpanID(parent))
			}
		}

		name := c.FullPath()
		if name == "" {
			name = "unmatched"
		}
		span, ctx := tracer.StartSpan(ctx, c.Request.Method+" "+name)
		span.SetTag("http.method", c.Request.Method)
		span.SetTag("http.path", c.Request.URL.Path)

		requestID := id.NewRequestID()
		span.SetTag("request.id", requestID.String())

		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTraceID, span.TraceID.String())
		c.Header(HeaderSpanID, span.SpanID.String())
		c.Header(HeaderRequestID, requestID.String())

		c.Next()

		span.SetStatus(c.Writer.Status())
		span.SetTag("http.status", strconv.Itoa(c.Writer.Status()))
		if len(c.Errors) > 0 {
			span.SetError(c.Errors.Last())
		}

		span.Finish()
		tracer.Submit(span)
	}
}
