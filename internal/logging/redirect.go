package logging

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"
)

// Source tags for output that did not originate from a slog call.
const (
	SourceStdout = "stdout"
	SourceStdlog = "stdlog"
)

// StdoutGuard reserves the process's standard output for protocol frames.
type StdoutGuard struct {
	protocol *os.File
	pipeR    *os.File
	pipeW    *os.File
	logger   *slog.Logger
	prevLog  io.Writer
	prevFlag int
	drained  chan struct{}
	once     sync.Once
}

// GuardStdout captures the current os.Stdout as the protocol sink and
// replaces it with a pipe drained into logger. The standard library log
// package is pointed at logger as well. Call Restore on shutdown.
func GuardStdout(logger *slog.Logger) (*StdoutGuard, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	g := &StdoutGuard{
		protocol: os.Stdout,
		pipeR:    r,
		pipeW:    w,
		logger:   logger,
		prevLog:  log.Writer(),
		prevFlag: log.Flags(),
		drained:  make(chan struct{}),
	}

	os.Stdout = w
	log.SetFlags(0)
	log.SetOutput(Writer(logger, SourceStdlog))

	go g.drain()
	return g, nil
}

// Protocol returns the writer that reaches the host.
func (g *StdoutGuard) Protocol() io.Writer {
	return g.protocol
}

func (g *StdoutGuard) drain() {
	defer close(g.drained)
	scanner := bufio.NewScanner(g.pipeR)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			g.logger.Info(line, slog.String(KeySource, SourceStdout))
		}
	}
}

// Restore puts the original stdout and log output back and waits until
// everything written to the pipe has been logged.
func (g *StdoutGuard) Restore() {
	g.once.Do(func() {
		os.Stdout = g.protocol
		log.SetOutput(g.prevLog)
		log.SetFlags(g.prevFlag)
		_ = g.pipeW.Close()
		<-g.drained
		_ = g.pipeR.Close()
	})
}
