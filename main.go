/*
 * norisc - command-line entry point: loads configuration, wires the
 * machine together, boots the inner-core image and runs it to completion.
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

// Command norisc boots and runs a headless Project Oberon RISC image. Every
// argument after argv[0] is passed straight through to the guest via the
// argc/argv syscalls; this process never parses its own flags.
package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/rcornwell/norisc/config"
	"github.com/rcornwell/norisc/diag"
	"github.com/rcornwell/norisc/hostio"
	"github.com/rcornwell/norisc/machine"
	"github.com/rcornwell/norisc/sysreq"
)

func main() {
	os.Exit(run())
}

// run builds and drives the machine, returning the process exit code. It is
// the only place in this module that decides an exit status; main's only
// job is handing that code to os.Exit.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", "error", err)
		return 1
	}

	logOut := io.Writer(os.Stderr)
	if cfg.Diagnostics.LogFile != "" {
		f, err := os.OpenFile(cfg.Diagnostics.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			slog.Error("opening log file", "path", cfg.Diagnostics.LogFile, "error", err)
			return 1
		}
		defer f.Close()
		logOut = io.MultiWriter(os.Stderr, f)
	}

	logger := diag.NewLoggerWithTrace(logOut, cfg.Diagnostics.Trace || diag.TraceEnabled())
	slog.SetDefault(logger)

	host := hostio.New(os.Stdin, os.Stdout, os.Stderr)
	m := machine.New(os.Args[1:], host, logger)

	if err := m.Boot(cfg.Boot.Image); err != nil {
		logger.Error("boot failed", "error", err)
		return 1
	}

	err = m.Run()

	var halt *sysreq.Halt
	if errors.As(err, &halt) {
		return int(halt.Code)
	}

	var trap *sysreq.Trap
	if errors.As(err, &trap) {
		logger.Error(trap.Message)
		return trap.ExitCode()
	}

	logger.Error("machine stopped", "error", err)
	return 1
}
