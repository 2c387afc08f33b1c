/*
 * norisc - wires the CPU core, RAM, MMIO register bank, syscall dispatcher
 * and host I/O together into a runnable machine.
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

// Package machine owns the one concrete wiring of the emulator: the CPU
// core driven against RAM and the MMIO register bank, with the syscall
// trigger slot routed to the dispatcher. Everything here is a field of a
// single Machine value built once by main; there are no package-level
// globals.
package machine

import (
	"log/slog"

	"github.com/rcornwell/norisc/boot"
	"github.com/rcornwell/norisc/cpu"
	"github.com/rcornwell/norisc/memory"
	"github.com/rcornwell/norisc/mmio"
	"github.com/rcornwell/norisc/sysreq"
)

const (
	// initialFramePointer is R12's value at reset, the frame-pointer
	// convention the inner core's runtime expects.
	initialFramePointer = 0x20
)

// Machine is the complete emulator: CPU, RAM, MMIO registers, the syscall
// dispatcher and the host environment behind it.
type Machine struct {
	CPU *cpu.CPU
	RAM *memory.RAM
	Sys *sysreq.Dispatcher

	reg    mmio.Registers
	host   mmio.Host
	logger *slog.Logger
}

// New builds a Machine ready to be booted. args are the pass-through guest
// command-line arguments (argv[1:] of the host process); host implements
// the console/clock/LED side of MMIO; logger receives host-side
// diagnostics only, never guest output.
func New(args []string, host mmio.Host, logger *slog.Logger) *Machine {
	m := &Machine{
		RAM:    &memory.RAM{},
		Sys:    sysreq.New(args),
		host:   host,
		logger: logger,
	}
	m.CPU = cpu.New(&bus{m: m})
	return m
}

// Boot locates and loads the inner-core image (image overrides the default
// name when non-empty) and resets the CPU to its power-on state.
func (m *Machine) Boot(image string) error {
	if err := boot.Load(m.RAM, image); err != nil {
		return err
	}
	m.CPU.Reset(initialFramePointer, boot.StackOrg)
	return nil
}

// Run steps the CPU until a fatal error, a *sysreq.Halt, or a *sysreq.Trap
// stops it. The caller distinguishes these with errors.As to decide the
// process exit code.
func (m *Machine) Run() error {
	for {
		if err := m.CPU.Step(); err != nil {
			return err
		}
	}
}

// bus adapts Machine to cpu.Bus: non-negative addresses (signed) route to
// RAM, negative addresses route to the MMIO register bank. Byte-sized MMIO
// accesses fall through to the word-sized handler and the byte lane is
// discarded, matching the reference.
type bus struct {
	m *Machine
}

func (b *bus) ReadProgram(addr uint32) (uint32, error) {
	return b.m.RAM.ReadWord(addr * memory.WordBytes)
}

func (b *bus) ReadWord(addr uint32) (uint32, error) {
	if mmio.IsMMIO(addr) {
		return b.m.reg.ReadWord(b.m.host, addr)
	}
	return b.m.RAM.ReadWord(addr)
}

func (b *bus) ReadByte(addr uint32) (uint8, error) {
	if mmio.IsMMIO(addr) {
		w, err := b.m.reg.ReadWord(b.m.host, addr)
		return uint8(w), err
	}
	return b.m.RAM.ReadByte(addr)
}

func (b *bus) WriteWord(addr, val uint32) error {
	if mmio.IsMMIO(addr) {
		return b.m.writeMMIO(addr, val)
	}
	return b.m.RAM.WriteWord(addr, val)
}

func (b *bus) WriteByte(addr uint32, val uint8) error {
	if mmio.IsMMIO(addr) {
		return b.m.writeMMIO(addr, uint32(val))
	}
	return b.m.RAM.WriteByte(addr, val)
}

// writeMMIO handles every MMIO write, including the syscall trigger (slot
// 1), which mmio.Registers itself does not implement since invoking the
// dispatcher needs RAM access.
func (m *Machine) writeMMIO(addr, val uint32) error {
	if mmio.Slot(addr) != mmio.SlotSysResult {
		return m.reg.WriteWord(m.host, addr, val)
	}
	if m.logger != nil {
		m.logger.Debug("sysreq", "code", val, "a", m.reg.Arg[0], "b", m.reg.Arg[1], "c", m.reg.Arg[2])
	}
	res, err := m.Sys.Exec(m.RAM, val, m.reg.Arg[0], m.reg.Arg[1], m.reg.Arg[2])
	if err != nil {
		return err
	}
	m.reg.Result = res
	return nil
}
