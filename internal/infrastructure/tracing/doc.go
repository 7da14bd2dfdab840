/*
Package tracing provides lightweight request tracing for the log viewer.

Each HTTP request gets a span whose trace ID is taken from a valid incoming
X-Trace-ID header or freshly generated. Handlers start child spans for
navigation calls, so a slow filtered listing shows up in the logs with its
scan duration next to the request that caused it. Completed spans are
logged through zap by a background collector; Close flushes it.

	tracer := tracing.New("log-viewer", logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(c.Request.Context(), "navigation.list")
	defer func() { span.Finish(); tracer.Submit(span) }()
*/
package tracing
