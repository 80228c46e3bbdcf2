// Package log provides structured logging for fieldsync built on zerolog.
//
// Init configures the global logger once at startup; components obtain
// child loggers via WithComponent so every line carries its origin.
package log
