/*
 * norisc - host-side I/O primitives behind the MMIO register bank: the
 * wall clock, the console byte stream, and the LED latch printer.
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

// Package hostio implements mmio.Host against the real terminal: stdin/
// stdout for the console byte, stderr for the LED latch, and the wall
// clock for the millisecond timer slot.
package hostio

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// Host wires the MMIO console/clock/LED slots to real OS streams.
type Host struct {
	in  *bufio.Reader
	out io.Writer
	led io.Writer
}

// New builds a Host reading the console from in and writing it to out, with
// led as the destination for LED-latch diagnostic lines (stderr in
// production).
func New(in io.Reader, out, led io.Writer) *Host {
	return &Host{in: bufio.NewReader(in), out: out, led: led}
}

// Millis implements the millisecond wall-clock slot: the low 32 bits of
// Unix time in milliseconds, matching the reference's truncated
// sec*1000+usec/1000.
func (h *Host) Millis() uint32 {
	return uint32(time.Now().UnixMilli())
}

// ReadConsoleByte reads one byte from the console. End of input (stdin
// closed or redirected from an exhausted file) yields the null byte rather
// than an error, since the MMIO contract only has room for 8 bits and a
// fatal abort on ordinary EOF would be far more surprising to a guest than
// a null byte.
func (h *Host) ReadConsoleByte() (uint8, error) {
	b, err := h.in.ReadByte()
	if err != nil {
		return 0, nil
	}
	return b, nil
}

// WriteConsoleByte writes one byte to the console.
func (h *Host) WriteConsoleByte(b uint8) error {
	_, err := h.out.Write([]byte{b})
	return err
}

// WriteLEDs prints the eight LED bits as "[LEDs: 76543210]", lit bits shown
// as their index digit and unlit bits as '-'.
func (h *Host) WriteLEDs(bits uint8) {
	var digits [8]byte
	for i := 0; i < 8; i++ {
		if bits&(1<<i) != 0 {
			digits[7-i] = byte('0' + i)
		} else {
			digits[7-i] = '-'
		}
	}
	fmt.Fprintf(h.led, "[LEDs: %s]\n", digits)
}
