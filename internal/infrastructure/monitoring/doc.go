/*
Package monitoring collects Prometheus metrics for the log viewer.

Metrics live on a private registry. Besides HTTP request metrics, a Metrics
value implements navigation.Recorder, so listing calls, content scans and
scan failures are counted where they happen:

	metrics := monitoring.NewMetrics()
	nav := navigation.New(policy, navigation.Options{Metrics: metrics})

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
