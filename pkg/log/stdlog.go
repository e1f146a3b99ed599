package log

import (
	stdlog "log"
)

// stdLogWriter adapts a Logger to io.Writer so the standard library's log
// package (used internally by Pebble) can be redirected through it.
type stdLogWriter struct {
	logger Logger
}

func (w stdLogWriter) Write(p []byte) (int, error) {
	msg := string(p)
	if n := len(msg); n > 0 && msg[n-1] == '\n' {
		msg = msg[:n-1]
	}
	w.logger.Info(msg, Component("stdlib"))
	return len(p), nil
}

// RedirectStdLog routes the standard library logger's output through the
// provided structured Logger.
func RedirectStdLog(logger Logger) {
	stdlog.SetOutput(stdLogWriter{logger: logger})
	stdlog.SetFlags(0)
}
