/*
 * norisc - boot loader: locates the InnerCore image and parses its
 * length-prefixed relocation stream into RAM.
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

// Package boot locates the InnerCore image and loads its relocation stream
// into RAM before the CPU takes its first step.
package boot

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/rcornwell/norisc/fs"
	"github.com/rcornwell/norisc/memory"
)

// ImageName is the conventional file name of the inner-core image.
const ImageName = "InnerCore"

// StackOrg is the initial stack pointer and the value recorded at word
// address 24 for the guest to read back.
const StackOrg = 0x80000

// Addresses the loader publishes to the guest before execution starts.
const (
	MemSizeAddr  = 12
	StackOrgAddr = 24
)

// LoadError wraps a failure to locate or parse the inner-core image.
type LoadError struct {
	Image  string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("can't load %s: %s: %v", e.Image, e.Reason, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// openImage finds name in the working directory, falling back to a
// read-only search along NOREBO_PATH.
func openImage(name string) (*os.File, error) {
	f, err := os.Open(name)
	if err == nil {
		return f, nil
	}
	f, err = fs.OpenOnPath(os.Getenv(fs.PathEnvVar), name, os.O_RDONLY, 0)
	if err != nil {
		return nil, &LoadError{Image: name, Reason: "not found", Err: err}
	}
	return f, nil
}

// Load locates the inner-core image (ImageName unless name overrides it),
// parses its relocation-record stream into mem, and then stamps RAM size
// and stack origin at the fixed word addresses the guest expects.
func Load(mem *memory.RAM, name string) error {
	if name == "" {
		name = ImageName
	}
	f, err := openImage(name)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := loadRecords(name, mem, f); err != nil {
		return err
	}

	if err := mem.WriteWord(MemSizeAddr, memory.Bytes); err != nil {
		return &LoadError{Image: name, Reason: "writing RAM size", Err: err}
	}
	if err := mem.WriteWord(StackOrgAddr, StackOrg); err != nil {
		return &LoadError{Image: name, Reason: "writing stack origin", Err: err}
	}
	return nil
}

// loadRecords reads size:u32 addr:u32 bytes[size] records until a
// zero-size terminator, writing each into mem at addr.
func loadRecords(name string, mem *memory.RAM, r io.Reader) error {
	for {
		size, err := readU32(r)
		if err != nil {
			return &LoadError{Image: name, Reason: "reading record size", Err: err}
		}
		if size == 0 {
			return nil
		}
		addr, err := readU32(r)
		if err != nil {
			return &LoadError{Image: name, Reason: "reading record address", Err: err}
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return &LoadError{Image: name, Reason: "reading record body", Err: err}
		}
		if err := mem.WriteBytes(addr, buf); err != nil {
			return &LoadError{Image: name, Reason: "record out of range", Err: err}
		}
	}
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
