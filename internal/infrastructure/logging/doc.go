// Package logging builds the process logger on uber/zap.
//
// Production mode writes JSON for log shippers; development mode writes
// colored console lines. Subsystems take a named child via Component so
// scanner warnings and HTTP access lines can be told apart:
//
//	logger := logging.NewDefault()
//	nav := navigation.New(policy, navigation.Options{Logger: logger.Component("navigation")})
//	logger.Info("Server starting", zap.String("port", "8000"))
package logging
