// Package logger builds the application's zap logger.
//
// Level (debug, info, warn, error) and format (json, console) come from the log section
// of the configuration. Debug switches to zap's development preset; every other level
// uses the production preset with the level applied on top.
//
// Request handlers tag their entries with WithRayID so every line written while serving
// a request carries the same ray_id field:
//
//	l := logger.WithRayID(log, c)
//	l.Error("Upload failed", zap.Error(err))
package logger
