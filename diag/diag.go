/*
 * norisc - host-side diagnostics: a slog handler for fatal error reports
 * and optional syscall tracing, never touching guest-visible output.
 *
 * Copyright 2026, the norisc authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package diag provides the emulator's own diagnostic logging: fatal error
// reports and, when enabled, a debug-level trace of syscalls. Accesses to
// unimplemented MMIO slots are not traced; they stop the machine and are
// reported as the fatal error. None of this reaches the guest; it is
// strictly a host-side concern, kept separate from the console byte stream
// the guest drives
// through slot 14.
package diag

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// traceEnvVar, when set to a non-empty value, turns on debug-level tracing
// of syscalls.
const traceEnvVar = "NORISC_TRACE"

// Handler is a small text slog.Handler modeled on line-oriented
// "timestamp level message attrs..." diagnostic output, mirroring how
// other tools in this family report to stderr.
type Handler struct {
	out   io.Writer
	inner slog.Handler
	mu    *sync.Mutex
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{out: h.out, inner: h.inner.WithAttrs(attrs), mu: h.mu}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{out: h.out, inner: h.inner.WithGroup(name), mu: h.mu}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	parts := []string{r.Time.Format("2006/01/02 15:04:05"), r.Level.String() + ":", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, a.String())
		return true
	})
	line := strings.Join(parts, " ") + "\n"

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write([]byte(line))
	return err
}

// New builds a Handler writing to out at the given minimum level.
func New(out io.Writer, level slog.Level) *Handler {
	return &Handler{
		out:   out,
		inner: slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}),
		mu:    &sync.Mutex{},
	}
}

// TraceEnabled reports whether NORISC_TRACE requests syscall tracing.
func TraceEnabled() bool {
	return os.Getenv(traceEnvVar) != ""
}

// NewLogger builds the process logger: stderr at info level, or debug
// level (enabling Trace calls) when TraceEnabled.
func NewLogger(out io.Writer) *slog.Logger {
	return NewLoggerWithTrace(out, TraceEnabled())
}

// NewLoggerWithTrace builds the process logger with explicit control over
// debug-level tracing, so a caller can honor a config file's trace flag as
// well as NORISC_TRACE.
func NewLoggerWithTrace(out io.Writer, trace bool) *slog.Logger {
	level := slog.LevelInfo
	if trace {
		level = slog.LevelDebug
	}
	return slog.New(New(out, level))
}
