/*
 * norisc - guest file service: handle table, name validation, and the
 * new/old/register/close/seek/tell/read/write/length/date/delete/purge/
 * rename operations.
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

// Package fs implements the guest-visible file service: a fixed-capacity
// table of open files addressed by small integer handles, name syntax
// validation, and the directory enumerator. Bad names, bad handles and
// missing files are guest-observable failures (0xFFFFFFFF); running out of
// handles, RAM range violations and host I/O failures are returned as Go
// errors, which the host treats as fatal.
package fs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rcornwell/norisc/memory"
)

const (
	// MaxFiles is the open-file table capacity.
	MaxFiles = 500
	// NameLength is the guest's fixed-size name buffer, including the NUL.
	NameLength = 32
	// Invalid is the guest-observable failure result (0xFFFFFFFF).
	Invalid = 0xFFFFFFFF
)

// Whence values for Seek, matching the guest's SET/CUR/END encoding.
const (
	SeekSet = 0
	SeekCur = 1
	SeekEnd = 2
)

// TooManyOpenFilesError reports exhaustion of the handle table; the host
// treats this as fatal since the guest has no way to recover from it.
type TooManyOpenFilesError struct{}

func (e *TooManyOpenFilesError) Error() string {
	return "files.allocate: too many open files"
}

// entry is one slot in the open-file table.
type entry struct {
	f          *os.File
	name       string
	registered bool
}

// Table is the guest's open-file table. The zero value is empty and ready
// to use.
type Table struct {
	entries [MaxFiles]*entry
}

// CheckName reports whether name is a syntactically legal guest file name:
// 1 to 31 characters, the first an ASCII letter, the rest letters, digits,
// or '.'.
func CheckName(name string) bool {
	if len(name) < 1 || len(name) > NameLength-1 {
		return false
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z':
			continue
		case i > 0 && (ch == '.' || (ch >= '0' && ch <= '9')):
			continue
		default:
			return false
		}
	}
	return true
}

// getName reads the NameLength-byte guest name buffer at adr and validates
// it. A buffer with no NUL within its NameLength bytes is rejected outright.
func getName(mem *memory.RAM, adr uint32) (string, bool) {
	buf, err := mem.ReadBytes(adr, NameLength)
	if err != nil {
		return "", false
	}
	nul := bytes.IndexByte(buf, 0)
	if nul < 0 {
		return "", false
	}
	name := string(buf[:nul])
	return name, CheckName(name)
}

// allocate claims the first free table slot.
func (t *Table) allocate(name string, registered bool) (int, error) {
	for h, e := range t.entries {
		if e == nil {
			t.entries[h] = &entry{name: name, registered: registered}
			return h, nil
		}
	}
	return 0, &TooManyOpenFilesError{}
}

func (t *Table) valid(h uint32) bool {
	return h < MaxFiles && t.entries[h] != nil
}

// New implements files.new: opens an anonymous temporary file, recording
// the guest-supplied name for a later Register but not creating it on disk.
func (t *Table) New(mem *memory.RAM, adr uint32) (uint32, error) {
	name, ok := getName(mem, adr)
	if !ok {
		return Invalid, nil
	}
	f, err := os.CreateTemp(".", "norisc-tmp-*")
	if err != nil {
		return 0, fmt.Errorf("files.new: %s: %w", name, err)
	}
	// tmpfile()-style: unlink immediately so the OS reclaims the space
	// whether or not the guest ever registers the file.
	_ = os.Remove(f.Name())
	h, err := t.allocate(name, false)
	if err != nil {
		_ = f.Close()
		return 0, err
	}
	t.entries[h].f = f
	return uint32(h), nil
}

// Old implements files.old: opens an existing file, trying the working
// directory read-write first and falling back to a read-only search along
// NOREBO_PATH.
func (t *Table) Old(mem *memory.RAM, adr uint32) (uint32, error) {
	name, ok := getName(mem, adr)
	if !ok {
		return Invalid, nil
	}
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		f, err = OpenOnPath(os.Getenv(PathEnvVar), name, os.O_RDONLY, 0)
	}
	if err != nil {
		return Invalid, nil
	}
	h, err := t.allocate(name, true)
	if err != nil {
		_ = f.Close()
		return 0, err
	}
	t.entries[h].f = f
	return uint32(h), nil
}

// Register implements files.register: publishes an unregistered handle's
// content under its recorded name. Nothing is written under that name
// before Register; here the named file is created or truncated, the temp
// file's content is copied into it and flushed. A failure partway through
// leaves the named file partially written.
func (t *Table) Register(h uint32) (uint32, error) {
	if !t.valid(h) {
		return Invalid, nil
	}
	e := t.entries[h]
	if e.registered || e.name == "" {
		return 0, nil
	}
	out, err := os.OpenFile(e.name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return 0, fmt.Errorf("files.register: can't create %s: %w", e.name, err)
	}
	if _, err := e.f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("files.register: %s: %w", e.name, err)
	}
	if _, err := io.Copy(out, e.f); err != nil {
		return 0, fmt.Errorf("files.register: can't write %s: %w", e.name, err)
	}
	if err := out.Sync(); err != nil {
		return 0, fmt.Errorf("files.register: can't flush %s: %w", e.name, err)
	}
	_ = e.f.Close()
	e.f = out
	e.registered = true
	return 0, nil
}

// Close implements files.close.
func (t *Table) Close(h uint32) uint32 {
	if !t.valid(h) {
		return Invalid
	}
	_ = t.entries[h].f.Close()
	t.entries[h] = nil
	return 0
}

// Seek implements files.seek.
func (t *Table) Seek(h, pos, whence uint32) uint32 {
	if !t.valid(h) {
		return Invalid
	}
	var w int
	switch whence {
	case SeekSet:
		w = io.SeekStart
	case SeekCur:
		w = io.SeekCurrent
	case SeekEnd:
		w = io.SeekEnd
	default:
		return Invalid
	}
	if _, err := t.entries[h].f.Seek(int64(int32(pos)), w); err != nil {
		return Invalid
	}
	return 0
}

// Tell implements files.tell.
func (t *Table) Tell(h uint32) uint32 {
	if !t.valid(h) {
		return Invalid
	}
	pos, err := t.entries[h].f.Seek(0, io.SeekCurrent)
	if err != nil {
		return Invalid
	}
	return uint32(pos)
}

// Read implements files.read: up to siz bytes land in RAM at adr; any
// untouched tail (short read, EOF) is zero-filled.
func (t *Table) Read(mem *memory.RAM, h, adr, siz uint32) (uint32, error) {
	if !t.valid(h) {
		return Invalid, nil
	}
	if err := memory.CheckRange("files.read", adr, siz); err != nil {
		return 0, err
	}
	buf := make([]byte, siz)
	n, err := io.ReadFull(t.entries[h].f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("files.read: %w", err)
	}
	if err := mem.WriteBytes(adr, buf[:n]); err != nil {
		return 0, err
	}
	if uint32(n) < siz {
		if err := mem.ZeroRange(adr+uint32(n), siz-uint32(n)); err != nil {
			return 0, err
		}
	}
	return uint32(n), nil
}

// Write implements files.write: siz bytes from RAM at adr are appended at
// the file's current position.
func (t *Table) Write(mem *memory.RAM, h, adr, siz uint32) (uint32, error) {
	if !t.valid(h) {
		return Invalid, nil
	}
	buf, err := mem.ReadBytes(adr, siz)
	if err != nil {
		return 0, err
	}
	n, err := t.entries[h].f.Write(buf)
	if err != nil {
		return 0, fmt.Errorf("files.write: %w", err)
	}
	return uint32(n), nil
}

// Length implements files.length: flush then report the file's size.
func (t *Table) Length(h uint32) (uint32, error) {
	if !t.valid(h) {
		return Invalid, nil
	}
	e := t.entries[h]
	if err := e.f.Sync(); err != nil {
		return 0, fmt.Errorf("files.length: %w", err)
	}
	info, err := e.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("files.length: %w", err)
	}
	return uint32(info.Size()), nil
}

// Date implements files.date: registered files report their mtime,
// unregistered (temp) files report the current time, packed into the
// guest's compact date/time word.
func (t *Table) Date(h uint32) (uint32, error) {
	if !t.valid(h) {
		return Invalid, nil
	}
	e := t.entries[h]
	if err := e.f.Sync(); err != nil {
		return 0, fmt.Errorf("files.date: %w", err)
	}
	if e.registered {
		info, err := e.f.Stat()
		if err != nil {
			return 0, fmt.Errorf("files.date: %w", err)
		}
		return packDate(info.ModTime()), nil
	}
	return packDate(time.Now()), nil
}

// packDate encodes t as (year%100)<<26 | mon<<22 | mday<<17 | hour<<12 |
// min<<6 | sec, using local time, matching the guest's compact date word.
// mon is 0-indexed (January=0), matching tm_mon in the reference's
// time_to_oberon, not Go's 1-indexed time.Month().
func packDate(t time.Time) uint32 {
	t = t.Local()
	year := uint32(t.Year() % 100)
	mon := uint32(t.Month()) - 1
	day := uint32(t.Day())
	hour := uint32(t.Hour())
	min := uint32(t.Minute())
	sec := uint32(t.Second())
	return (year << 26) | (mon << 22) | (day << 17) | (hour << 12) | (min << 6) | sec
}

// Delete implements files.delete: removes a file by name, provided the
// name is syntactically legal.
func Delete(mem *memory.RAM, adr uint32) uint32 {
	name, ok := getName(mem, adr)
	if !ok {
		return Invalid
	}
	if err := os.Remove(name); err != nil {
		return Invalid
	}
	return 0
}

// Rename implements files.rename.
func Rename(mem *memory.RAM, adrOld, adrNew uint32) uint32 {
	oldName, ok := getName(mem, adrOld)
	if !ok {
		return Invalid
	}
	newName, ok := getName(mem, adrNew)
	if !ok {
		return Invalid
	}
	if err := os.Rename(oldName, newName); err != nil {
		return Invalid
	}
	return 0
}
