/*
 * norisc - syscall dispatcher: the numbered table the guest drives through
 * the MMIO syscall-trigger slot, and the halt/argc/argv/trap primitives.
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

// Package sysreq implements the syscall dispatcher: a sparse table keyed by
// numeric code, mapping to handlers of signature (a, b, c uint32) -> uint32.
// The dispatcher owns the open-file table, the directory enumerator and the
// process argument vector; RAM is supplied by the caller (machine.Machine)
// on each Exec so this package stays unit-testable in isolation.
package sysreq

import (
	"fmt"

	"github.com/rcornwell/norisc/fs"
	"github.com/rcornwell/norisc/memory"
)

// Trap codes and their fixed diagnostic messages.
var trapMessages = map[uint32]string{
	1: "array index out of range",
	2: "type guard failure",
	3: "array or string copy overflow",
	4: "access via NIL pointer",
	5: "illegal procedure call",
	6: "integer division by zero",
	7: "assertion violated",
}

// UnknownCodeError reports a syscall code with no registered handler.
type UnknownCodeError struct{ Code uint32 }

func (e *UnknownCodeError) Error() string {
	return fmt.Sprintf("unimplemented sysreq %d", e.Code)
}

// PurgeInvokedError reports a call to the unimplemented files.purge request.
type PurgeInvokedError struct{}

func (e *PurgeInvokedError) Error() string { return "files.purge not implemented" }

// Halt is returned by Exec when the guest calls halt; the caller must stop
// the machine and exit with Code.
type Halt struct{ Code int32 }

func (h *Halt) Error() string { return fmt.Sprintf("halt(%d)", h.Code) }

// Trap is returned by Exec when the guest raises a runtime trap; the
// caller must report Message and exit with 100+Code.
type Trap struct {
	Code    uint32
	Message string
}

func (t *Trap) Error() string { return t.Message }

// ExitCode is the process exit code a trap maps to.
func (t *Trap) ExitCode() int { return int(100 + t.Code) }

// Dispatcher holds everything the syscall table needs beyond RAM: the
// open-file table, the directory enumerator, and the pass-through CLI
// arguments (argv[1:] of the host process).
type Dispatcher struct {
	Files *fs.Table
	Dir   *fs.Enumerator
	Args  []string
}

// New builds a Dispatcher around a fresh file table and enumerator.
func New(args []string) *Dispatcher {
	return &Dispatcher{
		Files: &fs.Table{},
		Dir:   &fs.Enumerator{},
		Args:  args,
	}
}

// Exec looks up code in the dispatch table and invokes it with (a, b, c).
// mem is the RAM the handler may need to read or write.
func (d *Dispatcher) Exec(mem *memory.RAM, code, a, b, c uint32) (uint32, error) {
	switch code {
	case 1:
		return 0, &Halt{Code: int32(a)}
	case 2:
		return uint32(len(d.Args)), nil
	case 3:
		return d.argv(mem, a, b, c)
	case 4:
		return 0, d.trap(mem, a, b, c)

	case 11:
		return d.Files.New(mem, a)
	case 12:
		return d.Files.Old(mem, a)
	case 13:
		return d.Files.Register(a)
	case 14:
		return d.Files.Close(a), nil
	case 15:
		return d.Files.Seek(a, b, c), nil
	case 16:
		return d.Files.Tell(a), nil
	case 17:
		return d.Files.Read(mem, a, b, c)
	case 18:
		return d.Files.Write(mem, a, b, c)
	case 19:
		return d.Files.Length(a)
	case 20:
		return d.Files.Date(a)
	case 21:
		return fs.Delete(mem, a), nil
	case 22:
		return 0, &PurgeInvokedError{}
	case 23:
		return fs.Rename(mem, a, b), nil

	case 31:
		return 0, d.Dir.Begin()
	case 32:
		return d.Dir.Next(mem, a)
	case 33:
		d.Dir.End()
		return 0, nil

	default:
		return 0, &UnknownCodeError{Code: code}
	}
}

// argv implements syscall 2/3's argv: copies argument idx (NUL-terminated,
// truncated to siz-1 bytes) into RAM at adr; returns its untruncated
// length, or fs.Invalid if idx is out of range.
func (d *Dispatcher) argv(mem *memory.RAM, idx, adr, siz uint32) (uint32, error) {
	if err := memory.CheckRange("norebo.argv", adr, siz); err != nil {
		return 0, err
	}
	if idx >= uint32(len(d.Args)) {
		return fs.Invalid, nil
	}
	arg := d.Args[idx]
	if siz > 0 {
		n := len(arg)
		if uint32(n) > siz-1 {
			n = int(siz - 1)
		}
		buf := make([]byte, siz)
		copy(buf, arg[:n])
		if err := mem.WriteBytes(adr, buf); err != nil {
			return 0, err
		}
	}
	return uint32(len(arg)), nil
}

// trap implements syscall 4: looks up the name at nameAdr (best-effort;
// "(unknown)" if the buffer isn't a legal name) and returns a *Trap
// describing the fixed message, name, and position for the caller to
// report and exit on.
func (d *Dispatcher) trap(mem *memory.RAM, code, nameAdr, pos uint32) error {
	msg, ok := trapMessages[code]
	if !ok {
		msg = fmt.Sprintf("unknown trap %d", code)
	}
	name := "(unknown)"
	if buf, err := mem.ReadBytes(nameAdr, fs.NameLength); err == nil {
		if n, ok := nameFromBuffer(buf); ok && fs.CheckName(n) {
			name = n
		}
	}
	return &Trap{Code: code, Message: fmt.Sprintf("%s at %s pos %d", msg, name, pos)}
}

func nameFromBuffer(buf []byte) (string, bool) {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i]), true
		}
	}
	return "", false
}
