// Package log provides the subscription engine's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. It is backed by the standard library's
// log/slog via a bridge handler, so structured logging benefits from slog's
// ecosystem while keeping a stable facade for the rest of the module.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("engine"), log.Str("subscription_id", id))
//	l.Info("dispatched event", log.Str("event_id", eventID.String()))
package log
