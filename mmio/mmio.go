/*
 * norisc - memory-mapped I/O register bank and address routing helpers.
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

// Package mmio implements the small bank of memory-mapped registers the
// RISC core sees below address zero: the millisecond clock, the console
// byte, the switches, the LED latch, and the three-argument/one-result/
// one-trigger syscall interface.
package mmio

import "fmt"

// Slot numbers, where slot = (-addr)/4. Slots with no entry here are
// unimplemented and any access to them is fatal.
const (
	SlotSysResult  = 1
	SlotSysArg0    = 2
	SlotSysArg1    = 3
	SlotSysArg2    = 4
	SlotSwitches   = 13
	SlotConsole    = 14
	SlotLEDs       = 15
	SlotClock      = 16
)

// Switches is the fixed, read-only value slot 13 reports.
const Switches = 3

// UnknownSlotError reports an access to an MMIO slot with no handler.
type UnknownSlotError struct {
	Op   string
	Addr uint32
	Slot uint32
}

func (e *UnknownSlotError) Error() string {
	return fmt.Sprintf("%s: unimplemented I/O address %#08x (slot %d)", e.Op, e.Addr, e.Slot)
}

// Slot computes the MMIO slot number for a negative (as signed) address.
func Slot(addr uint32) uint32 {
	return (-addr) / 4
}

// IsMMIO reports whether addr (interpreted as signed) routes to MMIO rather
// than RAM.
func IsMMIO(addr uint32) bool {
	return int32(addr) < 0
}

// Host is the set of host-side effects MMIO register accesses can trigger:
// reading the wall clock, exchanging a byte with the console, and latching
// the LEDs. The syscall trigger (slot 1) is handled one level up, in
// machine.Machine, because invoking it requires access to RAM and the
// syscall dispatcher rather than just these simple host primitives.
type Host interface {
	Millis() uint32
	ReadConsoleByte() (uint8, error)
	WriteConsoleByte(b uint8) error
	WriteLEDs(bits uint8)
}

// Registers holds the three syscall argument slots and the last syscall
// result; the trigger slot itself carries no state of its own.
type Registers struct {
	Arg    [3]uint32
	Result uint32
}

// ReadWord implements the read side of the MMIO address map. Reading slot 1
// returns the last syscall result and has no side effect; only writing slot
// 1 (the syscall trigger) is left to the caller.
func (r *Registers) ReadWord(host Host, addr uint32) (uint32, error) {
	switch Slot(addr) {
	case SlotSysResult:
		return r.Result, nil
	case SlotSysArg0:
		return r.Arg[0], nil
	case SlotSysArg1:
		return r.Arg[1], nil
	case SlotSysArg2:
		return r.Arg[2], nil
	case SlotSwitches:
		return Switches, nil
	case SlotConsole:
		b, err := host.ReadConsoleByte()
		return uint32(b), err
	case SlotClock:
		return host.Millis(), nil
	default:
		return 0, &UnknownSlotError{Op: "mmio read", Addr: addr, Slot: Slot(addr)}
	}
}

// WriteWord implements the write side of the MMIO address map for every
// slot except the syscall trigger (slot 1), which the caller must recognize
// first since invoking the dispatcher needs more context (RAM access) than
// this package owns.
func (r *Registers) WriteWord(host Host, addr, val uint32) error {
	switch Slot(addr) {
	case SlotSysArg0:
		r.Arg[0] = val
	case SlotSysArg1:
		r.Arg[1] = val
	case SlotSysArg2:
		r.Arg[2] = val
	case SlotConsole:
		return host.WriteConsoleByte(uint8(val))
	case SlotLEDs:
		host.WriteLEDs(uint8(val))
	default:
		return &UnknownSlotError{Op: "mmio write", Addr: addr, Slot: Slot(addr)}
	}
	return nil
}
