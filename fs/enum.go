/*
 * norisc - directory enumerator (enum.begin / enum.next / enum.end).
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

package fs

import (
	"fmt"
	"os"

	"github.com/rcornwell/norisc/memory"
)

// Enumerator walks the working directory's entries one at a time, skipping
// anything CheckName would reject. Only one exists at a time; Begin
// implicitly releases whatever the previous one was reading.
type Enumerator struct {
	names []string
	pos   int
	open  bool
}

// Begin implements enum.begin: (re)opens the working directory listing.
func (en *Enumerator) Begin() error {
	entries, err := os.ReadDir(".")
	if err != nil {
		return fmt.Errorf("enum.begin: %w", err)
	}
	en.names = en.names[:0]
	for _, d := range entries {
		if CheckName(d.Name()) {
			en.names = append(en.names, d.Name())
		}
	}
	en.pos = 0
	en.open = true
	return nil
}

// Next implements enum.next: writes the next legal name (at most 31 bytes
// plus a NUL terminator) into RAM at adr and returns 0, or leaves a bare
// NUL at adr and returns 0xFFFFFFFF once the listing is exhausted.
func (en *Enumerator) Next(mem *memory.RAM, adr uint32) (uint32, error) {
	if err := memory.CheckRange("enum.next", adr, NameLength); err != nil {
		return 0, err
	}
	if !en.open || en.pos >= len(en.names) {
		if err := mem.WriteByte(adr, 0); err != nil {
			return 0, err
		}
		return Invalid, nil
	}
	name := en.names[en.pos]
	en.pos++
	buf := make([]byte, NameLength)
	copy(buf, name)
	if err := mem.WriteBytes(adr, buf); err != nil {
		return 0, err
	}
	return 0, nil
}

// End implements enum.end.
func (en *Enumerator) End() {
	en.open = false
	en.names = nil
	en.pos = 0
}
