/*
 * norisc - search-path resolution shared by the file service and boot loader.
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
	"os"
	"path/filepath"
	"strings"
)

// PathEnvVar is the environment variable consulted for files.old lookups
// and for locating the InnerCore boot image when the working directory
// does not have them.
const PathEnvVar = "NOREBO_PATH"

// SplitPath splits a NOREBO_PATH-style value into directory components.
// Semicolon is the separator when present in the value, otherwise colon;
// an empty component means "current directory".
func SplitPath(value string) []string {
	if value == "" {
		return nil
	}
	sep := ":"
	if strings.Contains(value, ";") {
		sep = ";"
	}
	return strings.Split(value, sep)
}

// OpenOnPath walks the components of a NOREBO_PATH-style value in order and
// returns the first file that opens. Callers try "./name" themselves first;
// an empty component tries name relative to the working directory. The walk
// stops at the first error other than "not found" and returns that error.
func OpenOnPath(pathValue, name string, flag int, perm os.FileMode) (*os.File, error) {
	var lastErr error = os.ErrNotExist
	for _, dir := range SplitPath(pathValue) {
		full := name
		if dir != "" {
			full = filepath.Join(dir, name)
		}
		f, err := os.OpenFile(full, flag, perm)
		if err == nil {
			return f, nil
		}
		lastErr = err
		if !os.IsNotExist(err) {
			break
		}
	}
	return nil, lastErr
}
