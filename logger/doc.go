// Package logger provides structured logging for catapult using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with map-based structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("storage").WithFields(logger.Fields("backend", "s3"))
//	log.Info("connected", logger.Fields("bucket", bucket))
package logger
