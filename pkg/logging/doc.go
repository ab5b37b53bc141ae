// Package logging provides structured logging configuration for userdesk.
//
// This package wraps log/slog so the CLI, the remote client, the record store
// and the bundled server all log the same way.
//
// # Usage
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.LevelInfo,
//	    Format: logging.FormatText,
//	})
//
//	logger.Info("records loaded", "count", 12)
//	logger.Error("update failed", "id", "7", "error", err)
//
// Setting Config.File tees every record as JSON lines into a second writer
// (the CLI's --log-file flag).
//
// # Integration
//
// Components accept a *slog.Logger through an option. If no logger is
// provided they use logging.Nop().
package logging
