package log

import (
	"io"
	"os"
	"sync"
)

// ConsoleOutput writes formatted entries to a writer (stdout by default),
// serialized by a mutex since multiple goroutines may log concurrently.
type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleOutput returns a ConsoleOutput writing to os.Stdout.
func NewConsoleOutput() *ConsoleOutput { return &ConsoleOutput{w: os.Stdout} }

// NewWriterOutput returns a ConsoleOutput writing to an arbitrary writer,
// useful for tests that capture log output.
func NewWriterOutput(w io.Writer) *ConsoleOutput { return &ConsoleOutput{w: w} }

func (c *ConsoleOutput) Write(_ *Entry, formatted []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.w.Write(formatted)
	return err
}

func (c *ConsoleOutput) Close() error { return nil }
