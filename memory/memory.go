/*
 * norisc - RAM array and word/byte access helpers.
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

// Package memory implements the emulator's flat RAM and the bounds checks
// every syscall handler and the boot loader must perform before touching it.
package memory

import "fmt"

const (
	// WordBytes is bytes per machine word.
	WordBytes = 4
	// Words is RAM capacity in 32-bit words (8 MiB).
	Words = 8 * 1024 * 1024 / WordBytes
	// Bytes is RAM capacity in bytes.
	Bytes = Words * WordBytes
)

// RAM is the flat word-addressed memory of the machine. The zero value is
// ready to use (all words zero).
type RAM struct {
	words [Words]uint32
}

// OutOfRangeError reports an access outside the bounds of RAM.
type OutOfRangeError struct {
	Op   string
	Addr uint32
	Size uint32
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: address %#08x (size %d) out of range", e.Op, e.Addr, e.Size)
}

// InRange reports whether the byte range [addr, addr+size) lies entirely
// within RAM. Uses 64-bit widening so a zero-size range at the top of RAM
// never wraps around.
func InRange(addr, size uint32) bool {
	return uint64(addr)+uint64(size) <= uint64(Bytes)
}

// CheckRange returns an *OutOfRangeError if [addr, addr+size) is not
// entirely within RAM; op names the caller for diagnostics.
func CheckRange(op string, addr, size uint32) error {
	if !InRange(addr, size) {
		return &OutOfRangeError{Op: op, Addr: addr, Size: size}
	}
	return nil
}

// ReadWord returns the word at the word-aligned address (addr & ^3).
func (m *RAM) ReadWord(addr uint32) (uint32, error) {
	if err := CheckRange("ram read", addr, WordBytes); err != nil {
		return 0, err
	}
	return m.words[(addr&^uint32(3))/WordBytes], nil
}

// WriteWord stores val at the word-aligned address (addr & ^3).
func (m *RAM) WriteWord(addr, val uint32) error {
	if err := CheckRange("ram write", addr, WordBytes); err != nil {
		return err
	}
	m.words[(addr&^uint32(3))/WordBytes] = val
	return nil
}

// ReadByte returns the little-endian byte lane of addr.
func (m *RAM) ReadByte(addr uint32) (uint8, error) {
	w, err := m.ReadWord(addr)
	if err != nil {
		return 0, err
	}
	return uint8(w >> ((addr & 3) * 8)), nil
}

// WriteByte stores val into the little-endian byte lane of addr, leaving
// the other three bytes of the containing word untouched.
func (m *RAM) WriteByte(addr uint32, val uint8) error {
	w, err := m.ReadWord(addr)
	if err != nil {
		return err
	}
	shift := (addr & 3) * 8
	w = (w &^ (0xFF << shift)) | (uint32(val) << shift)
	return m.WriteWord(addr, w)
}

// ReadBytes copies size bytes starting at addr into a fresh slice, useful
// for syscall handlers that stream RAM content to a host file.
func (m *RAM) ReadBytes(addr, size uint32) ([]byte, error) {
	if err := CheckRange("ram read", addr, size); err != nil {
		return nil, err
	}
	out := make([]byte, size)
	for i := range out {
		out[i], _ = m.ReadByte(addr + uint32(i))
	}
	return out, nil
}

// WriteBytes copies data into RAM starting at addr.
func (m *RAM) WriteBytes(addr uint32, data []byte) error {
	if err := CheckRange("ram write", addr, uint32(len(data))); err != nil {
		return err
	}
	for i, b := range data {
		_ = m.WriteByte(addr+uint32(i), b)
	}
	return nil
}

// ZeroRange fills size bytes starting at addr with zero, used to pad the
// untouched tail of a short files.read.
func (m *RAM) ZeroRange(addr, size uint32) error {
	if err := CheckRange("ram write", addr, size); err != nil {
		return err
	}
	for i := uint32(0); i < size; i++ {
		_ = m.WriteByte(addr+i, 0)
	}
	return nil
}
